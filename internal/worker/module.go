package worker

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"uptime-reporter/internal/checker"
	"uptime-reporter/internal/config"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/encoder"
	"uptime-reporter/internal/exporter"
	"uptime-reporter/internal/interfaces"
	"uptime-reporter/internal/registry"
)

var Module = fx.Options(
	fx.Provide(func(p checker.Prober, e encoder.Encoder, s exporter.Sink) Pipeline {
		return Pipeline{Prober: p, Encoder: e, Sink: s}
	}),
	fx.Provide(func(cfg *config.Config, targets []domain.CheckTarget, metrics domain.MetricsCollector, logger *zap.Logger) Scheduler {
		return NewScheduler(
			targets,
			cfg.RunOnStart,
			metrics,
			logger,
		)
	}),
	fx.Provide(func(cfg *config.Config, reg *registry.Registry, pipeline Pipeline, scheduler Scheduler, metrics domain.MetricsCollector, logger *zap.Logger) *Pool {
		// Dial and write each get the collector I/O timeout.
		delivery := 2 * cfg.Collector.GetIOTimeout()
		return NewPool(
			PoolConfig{
				WorkerCount:      cfg.Workers.Count,
				RequiredCapacity: reg.RequiredCapacity(),
				DefaultSize:      reg.PoolSize(delivery),
			},
			pipeline,
			scheduler,
			metrics,
			logger,
		)
	}),
	fx.Provide(func(p *Pool) interfaces.WorkerPool { return p }),
	fx.Provide(func(s Scheduler) interfaces.HealthChecker { return s }),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, pool interfaces.WorkerPool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return pool.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop(ctx)
		},
	})
}
