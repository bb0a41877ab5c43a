// Package graphite delivers metric batches to a Graphite plaintext listener.
package graphite

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/encoder"
)

// ErrDelivery marks a batch that did not reach the collector.
var ErrDelivery = errors.New("graphite delivery failed")

type Config struct {
	Address   string
	IOTimeout time.Duration
}

type Exporter struct {
	address string
	timeout time.Duration
	dialer  *net.Dialer
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Exporter {
	return &Exporter{
		address: cfg.Address,
		timeout: cfg.IOTimeout,
		dialer:  &net.Dialer{Timeout: cfg.IOTimeout},
		logger:  logger.With(zap.String("component", "graphite")),
	}
}

// Send writes the whole batch over a single connection and closes it.
// There is no retry; the next probe brings the next batch.
func (e *Exporter) Send(ctx context.Context, lines []domain.MetricLine) error {
	if len(lines) == 0 {
		return nil
	}

	if e.logger.Core().Enabled(zap.DebugLevel) {
		for _, l := range lines {
			e.logger.Debug("sending message to graphite", zap.String("line", encoder.FormatLine(l)))
		}
	}

	conn, err := e.dialer.DialContext(ctx, "tcp", e.address)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrDelivery, e.address, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(e.timeout)); err != nil {
		return fmt.Errorf("%w: set deadline: %v", ErrDelivery, err)
	}

	w := bufio.NewWriter(conn)
	if _, err := w.Write(encoder.Render(lines)); err != nil {
		return fmt.Errorf("%w: write to %s: %v", ErrDelivery, e.address, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flush to %s: %v", ErrDelivery, e.address, err)
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrDelivery, e.address, err)
	}
	return nil
}
