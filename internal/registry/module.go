package registry

import (
	"go.uber.org/fx"
	"uptime-reporter/internal/domain"
)

var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(func(r *Registry) []domain.CheckTarget { return r.Targets() }),
)
