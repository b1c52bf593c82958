// cmd/intent-server/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "intent-server",
		Short: "Resolve free-text inventory and sales requests against eWeb",
		Long: "intent-server classifies requests such as \"show TechCo sales last two weeks\", " +
			"extracts brand and time window, and calls the matching eWeb endpoint.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config YAML file (default: configs/config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(resolveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
