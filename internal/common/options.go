package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"uptime-reporter/internal/config"
	"uptime-reporter/internal/domain"
)

// ServiceOptions defines common options for service constructors
type ServiceOptions struct {
	Logger   *zap.Logger
	Metrics  domain.MetricsCollector
	Config   *config.Config
	Registry *prometheus.Registry
	Env      string
}

// Option defines a service option modifier
type Option func(*ServiceOptions)

func WithLogger(logger *zap.Logger) Option {
	return func(o *ServiceOptions) {
		o.Logger = logger
	}
}

// WithMetrics replaces the Prometheus-backed collector.
func WithMetrics(metrics domain.MetricsCollector) Option {
	return func(o *ServiceOptions) {
		o.Metrics = metrics
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(o *ServiceOptions) {
		o.Config = cfg
	}
}

// WithRegistry registers self-metrics on reg instead of the global registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *ServiceOptions) {
		o.Registry = reg
	}
}

func WithEnv(env string) Option {
	return func(o *ServiceOptions) {
		o.Env = env
	}
}
