package encoder

import (
	"go.uber.org/fx"
	"uptime-reporter/internal/config"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) (Encoder, error) {
		return New(cfg.Encoder, cfg.MetricPrefix)
	}),
)
