package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "eweb-intent/internal/common/errors"
	"eweb-intent/internal/intent"
	"eweb-intent/internal/models"
)

func resolveCmd() *cobra.Command {
	var supplierID string

	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve one query and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			q := intent.Query{Text: strings.Join(args, " "), SupplierIDOverride: supplierID}
			res, err := a.resolver.Resolve(ctx, q, a.defaults)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err != nil {
				_ = enc.Encode(models.ErrorResponse{Error: apperrors.Normalize(err)})
				return err
			}
			return enc.Encode(models.NewIntentResponse(res))
		},
	}

	cmd.Flags().StringVar(&supplierID, "supplier-id", "", "supplier id, overrides eweb.default_supplier_id")
	return cmd
}
