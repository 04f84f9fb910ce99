package harness

import (
	"context"

	"cyclicexec/internal/cache"
	"cyclicexec/internal/config"
	"cyclicexec/internal/logger"
	"cyclicexec/internal/metrics"
	"cyclicexec/internal/telemetry"
)

// FromConfig stands up the ambient stack from a loaded Config and returns a
// Harness wired with whatever cfg enables, plus a shutdown function that
// flushes the tracer. Tracing and caching follow the warn-and-continue
// policy: a backend that fails to initialize is logged and skipped rather
// than failing the whole harness, since the solve pipeline works without
// either.
func FromConfig(ctx context.Context, cfg *config.Config) (*Harness, func(context.Context) error) {
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	var opts []Option
	shutdown := func(context.Context) error { return nil }

	if cfg.Tracing.Enabled {
		provider, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     true,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("tracing disabled: exporter init failed", "error", err)
		} else {
			opts = append(opts, WithTracer(provider))
			shutdown = provider.Shutdown
			logger.Log.Info("tracing initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	if cfg.Metrics.Enabled {
		opts = append(opts, WithMetrics(metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)))
	}

	if cfg.Cache.Enabled {
		base, err := cache.New(cache.FromConfig(cfg.Cache))
		if err != nil {
			logger.Log.Warn("geometry cache disabled: backend init failed", "error", err, "driver", cfg.Cache.Driver)
		} else {
			opts = append(opts, WithGeometryCache(cache.NewGeometryCache(base, cfg.Cache.DefaultTTL)))
			logger.Log.Info("geometry cache initialized", "driver", cfg.Cache.Driver, "ttl", cfg.Cache.DefaultTTL)
		}
	}

	return New(opts...), shutdown
}
