package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"uptime-reporter/internal/domain"
)

const defaultShutdownTimeout = 30 * time.Second

type Pool struct {
	workers         []Worker
	scheduler       Scheduler
	jobs            chan domain.CheckTarget
	logger          *zap.Logger
	wg              conc.WaitGroup
	cancel          context.CancelFunc
	mu              sync.Mutex
	metrics         domain.MetricsCollector
	isStarted       bool
	isStopped       bool
	shutdownTimeout time.Duration
}

// PoolConfig sizes the pool. WorkerCount of 0 means DefaultSize, or
// RequiredCapacity when that is unset. DefaultSize includes headroom for jobs
// that outlive their timeout and for delivery.
type PoolConfig struct {
	WorkerCount      int
	RequiredCapacity int
	DefaultSize      int
	ShutdownTimeout  time.Duration
}

// Size is the number of workers the pool runs.
func (c PoolConfig) Size() int {
	n := c.WorkerCount
	if n <= 0 {
		n = c.DefaultSize
	}
	if n <= 0 {
		n = c.RequiredCapacity
	}
	if n < 1 {
		n = 1
	}
	return n
}

func NewPool(
	cfg PoolConfig,
	pipeline Pipeline,
	scheduler Scheduler,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) *Pool {
	size := cfg.Size()
	if size < cfg.RequiredCapacity || size < cfg.DefaultSize {
		// Not fatal: ticks that find no idle worker are dropped, which shows up
		// as gaps in the emitted series.
		logger.Warn("worker pool smaller than required capacity, expect dropped ticks",
			zap.Int("worker_count", size),
			zap.Int("required_capacity", cfg.RequiredCapacity),
			zap.Int("recommended_size", cfg.DefaultSize))
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	// Unbuffered: a send only succeeds when a worker is idle and waiting.
	jobs := make(chan domain.CheckTarget)
	workers := make([]Worker, size)
	for i := 0; i < size; i++ {
		workers[i] = NewWorker(i, jobs, pipeline, metrics, logger)
	}

	metrics.SetWorkerCapacity(size)

	return &Pool{
		workers:         workers,
		scheduler:       scheduler,
		jobs:            jobs,
		logger:          logger,
		metrics:         metrics,
		shutdownTimeout: shutdownTimeout,
	}
}

func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isStarted {
		return fmt.Errorf("worker pool already started")
	}
	if p.isStopped {
		return fmt.Errorf("worker pool cannot be restarted")
	}
	p.isStarted = true

	p.logger.Debug("starting worker pool")

	// The pool outlives ctx, which only bounds startup.
	poolCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for _, w := range p.workers {
		w := w
		p.wg.Go(func() {
			w.Start(poolCtx)
		})
	}

	p.wg.Go(func() {
		p.scheduler.Start(poolCtx, p.jobs)
	})

	p.logger.Info("worker pool started",
		zap.Int("worker_count", len(p.workers)))

	return nil
}

// Stop cancels scheduling and waits for in-flight jobs until ctx is done or
// the shutdown timeout passes, whichever comes first. Jobs still running
// after that are abandoned.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isStarted {
		p.mu.Unlock()
		return nil
	}
	p.isStarted = false
	p.isStopped = true
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	p.logger.Debug("stopping worker pool")

	_ = p.scheduler.Stop()
	if cancel != nil {
		cancel()
	}
	for _, w := range p.workers {
		w.Stop()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(p.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		p.logger.Debug("worker pool stopped gracefully")
	case <-ctx.Done():
		return fmt.Errorf("worker pool shutdown interrupted: %w", ctx.Err())
	case <-timer.C:
		return fmt.Errorf("worker pool shutdown timed out after %s", p.shutdownTimeout)
	}

	return nil
}

func (p *Pool) Size() int {
	return len(p.workers)
}
