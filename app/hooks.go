package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"uptime-reporter/internal/config"
	"uptime-reporter/internal/registry"
)

type hookParams struct {
	fx.In

	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Registry  *registry.Registry
	Env       string
}

func registerHooks(p hookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting application",
				zap.String("env", p.Env),
				zap.Int("checks", p.Registry.Len()),
				zap.Int("required_capacity", p.Registry.RequiredCapacity()),
				zap.String("collector", p.Config.Collector.Address()),
				zap.String("encoder", p.Config.Encoder))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("stopping application")
			return nil
		},
	})
}
