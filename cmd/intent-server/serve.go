package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/spf13/cobra"

	"eweb-intent/internal/audit"
	"eweb-intent/internal/common/config"
	"eweb-intent/internal/common/database"
	"eweb-intent/internal/server"
	ri "eweb-intent/internal/workers/intent/resolve-intent"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when a broker is configured, the resolve-intent job worker",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	checks := map[string]server.ReadyCheck{}
	if a.redis != nil {
		checks["redis"] = a.redis.Ping
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		var pg *database.PostgresClient
		err := retryWithBackoff(ctx, func() error {
			var err error
			if pg == nil {
				if pg, err = database.NewPostgres(cfg.Audit.Postgres); err != nil {
					return err
				}
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, a.log, "PostgreSQL connection")
		if err != nil {
			return fmt.Errorf("audit store: %w", err)
		}
		defer pg.Close()

		pgRecorder := audit.NewPostgresRecorder(pg.DB, a.log)
		if err := pgRecorder.EnsureSchema(ctx); err != nil {
			return err
		}
		recorder = pgRecorder
		checks["postgres"] = pg.Ping
		a.log.Info("audit trail enabled", nil)
	}

	jobWorker, zeebeClient, err := startJobWorker(ctx, a)
	if err != nil {
		return err
	}
	if zeebeClient != nil {
		defer func() {
			jobWorker.Close()
			jobWorker.AwaitClose()
			if err := zeebeClient.Close(); err != nil {
				a.log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	srv := server.New(cfg.Server, server.Dependencies{
		Resolver:    a.resolver,
		Defaults:    a.defaults,
		Recorder:    recorder,
		ReadyChecks: checks,
		Logger:      a.log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.log.Info("intent server stopped gracefully", nil)
	return nil
}

// startJobWorker registers the resolve-intent worker. It returns nils when no
// broker is configured or the worker is disabled.
func startJobWorker(ctx context.Context, a *app) (worker.JobWorker, zbc.Client, error) {
	cfg := a.cfg
	if cfg.Camunda.BrokerAddress == "" {
		return nil, nil, nil
	}
	wcfg := config.GetWorkerConfig(cfg, ri.TaskType)
	if !wcfg.Enabled {
		a.log.Info("worker disabled", map[string]interface{}{"taskType": ri.TaskType})
		return nil, nil, nil
	}

	var zeebeClient zbc.Client
	err := retryWithBackoff(ctx, func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, a.log, "Zeebe client initialization")
	if err != nil {
		return nil, nil, err
	}

	handler := ri.NewHandler(&ri.Config{
		Timeout:  config.GetDuration(wcfg.Timeout),
		Defaults: a.defaults,
	}, a.resolver, a.log)

	maxJobs := wcfg.MaxJobsActive
	if maxJobs == 0 {
		maxJobs = cfg.Camunda.MaxJobsActive
	}
	jw := zeebeClient.NewJobWorker().
		JobType(ri.TaskType).
		Handler(handler.Handle).
		MaxJobsActive(maxJobs).
		Timeout(config.GetDuration(wcfg.Timeout)).
		RequestTimeout(config.GetDuration(cfg.Camunda.RequestTimeout)).
		Open()

	a.log.Info("worker started", map[string]interface{}{
		"taskType":      ri.TaskType,
		"maxJobsActive": maxJobs,
	})
	return jw, zeebeClient, nil
}
