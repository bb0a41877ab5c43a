package app

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"uptime-reporter/internal/checker"
	"uptime-reporter/internal/common"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/encoder"
	"uptime-reporter/internal/exporter"
	"uptime-reporter/internal/metrics"
	"uptime-reporter/internal/registry"
	"uptime-reporter/internal/worker"
)

var errNoConfig = errors.New("application requires a configuration")

type Application struct {
	app    *fx.App
	logger *zap.Logger
}

func NewApplication(opts ...common.Option) *Application {
	options := &common.ServiceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Ensure required options are set
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	app := &Application{
		logger: options.Logger,
	}

	fxOptions := []fx.Option{
		// Core modules
		registry.Module,
		checker.Module,
		encoder.Module,
		exporter.Module,
		metrics.Module,
		worker.Module,

		// Provide base dependencies
		fx.Provide(
			func() *zap.Logger { return options.Logger },
			func() string { return options.Env },
		),

		// Configure fx
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// Set timeouts
		fx.StopTimeout(30 * time.Second),
		fx.StartTimeout(30 * time.Second),

		// Register lifecycle hooks
		fx.Invoke(registerHooks),
	}

	if options.Config != nil {
		fxOptions = append(fxOptions, fx.Supply(options.Config))
	} else {
		fxOptions = append(fxOptions, fx.Error(errNoConfig))
	}
	if reg := options.Registry; reg != nil {
		fxOptions = append(fxOptions, fx.Decorate(
			func(prometheus.Registerer) prometheus.Registerer { return reg },
			func(prometheus.Gatherer) prometheus.Gatherer { return reg },
		))
	}
	if m := options.Metrics; m != nil {
		fxOptions = append(fxOptions, fx.Decorate(
			func(domain.MetricsCollector) domain.MetricsCollector { return m },
		))
	}

	app.app = fx.New(fxOptions...)

	return app
}

// Err reports any error from building the dependency graph.
func (a *Application) Err() error {
	return a.app.Err()
}

func (a *Application) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}
