package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"eweb-intent/internal/common/config"
	"eweb-intent/internal/common/database"
	"eweb-intent/internal/common/eweb"
	"eweb-intent/internal/common/logger"
	"eweb-intent/internal/common/observability"
	"eweb-intent/internal/intent"
)

// app holds everything both commands need to resolve a query.
type app struct {
	cfg      *config.Config
	zapLog   *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	resolver *intent.Resolver
	defaults intent.Defaults
	redis    *database.RedisClient
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		JaegerEndpoint: cfg.Telemetry.JaegerEndpoint,
	})
	if err != nil {
		log.Warn("telemetry partially disabled", map[string]interface{}{"error": err.Error()})
	}

	client, err := eweb.NewClient(eweb.OptionsFromConfig(cfg.EWeb), log)
	if err != nil {
		return nil, fmt.Errorf("eweb client: %w", err)
	}

	a := &app{
		cfg:      cfg,
		zapLog:   zapLog,
		log:      log,
		obs:      obs,
		defaults: intent.Defaults{DefaultSupplierID: cfg.EWeb.DefaultSupplierID},
	}

	var provider intent.DataProvider = client
	if cfg.Cache.Enabled {
		rdb := database.NewRedis(cfg.Cache)
		err := retryWithBackoff(ctx, func() error { return rdb.Ping(ctx) }, 5, time.Second, log, "Redis connection")
		if err != nil {
			// Serve uncached rather than refuse to start.
			log.Warn("response cache disabled", map[string]interface{}{"error": err.Error()})
			_ = rdb.Close()
		} else {
			a.redis = rdb
			provider = eweb.NewCachedProvider(client, rdb.Client, time.Duration(cfg.Cache.TTL)*time.Second, log)
		}
	}

	opts := []intent.Option{
		intent.WithTracer(obs.Tracer("eweb-intent/resolver")),
		intent.WithObserver(obs),
	}
	if len(cfg.Intent.KnownBrands) > 0 {
		opts = append(opts, intent.WithBrandExtractor(intent.ChainBrandExtractor{
			intent.NewDictionaryBrandExtractor(cfg.Intent.KnownBrands),
			intent.PatternBrandExtractor{},
		}))
	}
	a.resolver = intent.NewResolver(provider, log, opts...)

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.obs.Shutdown(context.Background())
	_ = a.zapLog.Sync()
}

// retryWithBackoff retries operation with exponential backoff until it
// succeeds, maxRetries is reached or ctx is done.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		log.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
