package checker

import (
	"context"

	"go.uber.org/fx"
	"uptime-reporter/internal/config"
	"uptime-reporter/internal/domain"
)

// Module exports the checker module
var Module = fx.Options(
	fx.Provide(NewProber),
)

// Prober runs a single timed fetch against a target.
type Prober interface {
	Probe(ctx context.Context, target domain.CheckTarget) domain.ProbeResult
}

// NewProber creates the HTTP prober described by the configuration
func NewProber(cfg *config.Config) (Prober, error) {
	return NewHTTPProber(Options{
		UserAgent:       cfg.UserAgent,
		Headers:         cfg.HTTPHeaders(),
		FollowRedirects: cfg.FollowRedirects,
	}), nil
}

var _ Prober = (*HTTPProber)(nil)
