package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(
		func() *prometheus.Registry { return prometheus.NewRegistry() },
		provideMetricsConfig,
		providePOSMetrics,
		providePusher,
	),
	fx.Invoke(registerPush),
)

func provideMetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	}
}

func providePOSMetrics(registry *prometheus.Registry, cfg metrics.Config) *metrics.POSMetrics {
	return metrics.New(registry, cfg)
}

func providePusher(cfg config.Config) *metrics.Pusher {
	return metrics.NewPusher(cfg.MetricsPushURL, cfg.AppName, map[string]string{
		"environment": cfg.Environment,
	})
}

func registerPush(lc fx.Lifecycle, pusher *metrics.Pusher, registry *prometheus.Registry, log *zap.Logger) {
	if pusher == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := pusher.Push(ctx, registry); err != nil {
				log.Warn("metrics push failed", zap.Error(err))
			}
			return nil
		},
	})
}
