package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
	"uptime-reporter/internal/checker"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/encoder"
	"uptime-reporter/internal/exporter"
)

// Worker represents a single worker that runs probes
type Worker interface {
	Start(context.Context)
	Stop()
}

// Pipeline is the probe, encode and deliver chain each job runs through.
type Pipeline struct {
	Prober  checker.Prober
	Encoder encoder.Encoder
	Sink    exporter.Sink
}

type worker struct {
	id       int
	jobs     <-chan domain.CheckTarget
	pipeline Pipeline
	logger   *zap.Logger
	stopOnce sync.Once
	stopChan chan struct{}
	metrics  domain.MetricsCollector
}

func NewWorker(
	id int,
	jobs <-chan domain.CheckTarget,
	pipeline Pipeline,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) Worker {
	return &worker{
		id:       id,
		jobs:     jobs,
		pipeline: pipeline,
		logger:   logger.With(zap.Int("worker_id", id)),
		stopChan: make(chan struct{}),
		metrics:  metrics,
	}
}

func (w *worker) Start(ctx context.Context) {
	w.logger.Debug("worker started")
	defer w.logger.Debug("worker stopped")

	for {
		select {
		case target, ok := <-w.jobs:
			if !ok {
				w.logger.Info("jobs channel closed")
				return
			}
			w.run(ctx, target)
		case <-ctx.Done():
			return
		case <-w.stopChan:
			w.logger.Info("received stop signal")
			return
		}
	}
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

// run executes one job. A panic is confined to the job so the worker keeps
// serving ticks.
func (w *worker) run(ctx context.Context, target domain.CheckTarget) {
	w.metrics.RecordWorkerBusy()
	defer w.metrics.RecordWorkerIdle()

	logger := w.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("target", target.Name()),
	)

	var pc panics.Catcher
	pc.Try(func() {
		err := w.processCheck(ctx, target, logger)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			logger.Debug("check abandoned on shutdown", zap.Error(err))
		default:
			logger.Error("check processing failed", zap.Error(err))
		}
	})
	if r := pc.Recovered(); r != nil {
		logger.Error("check panicked",
			zap.Error(r.AsError()),
			zap.ByteString("stack", r.Stack))
	}
}

func (w *worker) processCheck(ctx context.Context, target domain.CheckTarget, logger *zap.Logger) error {
	result := w.pipeline.Prober.Probe(ctx, target)
	w.metrics.RecordProbe(result)

	switch result.Outcome {
	case domain.OutcomeTimedOut:
		logger.Warn("probe timed out",
			zap.Duration("timeout", target.Timeout),
			zap.String("error", result.Error))
	case domain.OutcomeError:
		logger.Warn("probe failed", zap.String("error", result.Error))
	default:
		logger.Debug("probe finished",
			zap.Int("status", result.ResponseCode),
			zap.Int64("bytes", result.DownloadBytes),
			zap.Duration("duration", result.Duration))
	}

	if err := ctx.Err(); err != nil {
		return NewJobError(StageProbe, "result discarded", err)
	}

	lines := w.pipeline.Encoder.Encode(result)

	err := w.pipeline.Sink.Send(ctx, lines)
	w.metrics.RecordDelivery(target.Name(), err)
	if err != nil {
		return NewJobError(StageDeliver, "failed to deliver metrics", err)
	}
	return nil
}
