package exporter

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"uptime-reporter/internal/config"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/exporter/graphite"
)

// Module exports the exporter module
var Module = fx.Options(
	fx.Provide(NewSink),
)

// Sink delivers one encoded batch to the metrics collector.
type Sink interface {
	Send(ctx context.Context, lines []domain.MetricLine) error
}

func NewSink(cfg *config.Config, logger *zap.Logger) Sink {
	return graphite.New(graphite.Config{
		Address:   cfg.Collector.Address(),
		IOTimeout: cfg.Collector.GetIOTimeout(),
	}, logger)
}

var _ Sink = (*graphite.Exporter)(nil)
