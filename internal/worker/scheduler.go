package worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/interfaces"
)

type Scheduler interface {
	Start(context.Context, chan<- domain.CheckTarget)
	Stop() error
	interfaces.HealthChecker
}

type defaultScheduler struct {
	targets    []domain.CheckTarget
	runOnStart bool
	logger     *zap.Logger
	metrics    domain.MetricsCollector
	mu         sync.RWMutex
	running    bool
	stopping   bool
}

// NewScheduler returns a scheduler that fires each target on its own
// interval. Ticks are never queued: a tick that finds every worker busy is
// dropped.
func NewScheduler(
	targets []domain.CheckTarget,
	runOnStart bool,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) Scheduler {
	return &defaultScheduler{
		targets:    targets,
		runOnStart: runOnStart,
		logger:     logger.With(zap.String("component", "scheduler")),
		metrics:    metrics,
	}
}

// Start blocks until ctx is cancelled.
func (s *defaultScheduler) Start(ctx context.Context, jobs chan<- domain.CheckTarget) {
	logger := cronLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)

	for _, target := range s.targets {
		target := target
		c.Schedule(every(target.Interval), cron.FuncJob(func() {
			s.dispatch(ctx, target, jobs, 0)
		}))
		s.logger.Info("scheduled target",
			zap.String("target", target.Name()),
			zap.Duration("interval", target.Interval),
			zap.Duration("timeout", target.Timeout))
	}

	s.mu.Lock()
	s.running = true
	s.stopping = false
	s.mu.Unlock()

	c.Start()

	if s.runOnStart {
		// Workers may still be starting, so the first pass waits up to one
		// interval for each target instead of dropping straight away.
		var wg conc.WaitGroup
		for _, target := range s.targets {
			target := target
			wg.Go(func() {
				s.dispatch(ctx, target, jobs, target.Interval)
			})
		}
		wg.Wait()
	}

	<-ctx.Done()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	<-c.Stop().Done()
	s.logger.Debug("scheduler stopped", zap.Error(ctx.Err()))
}

// dispatch hands target to an idle worker. With a zero grace the tick is
// dropped at once when every worker is busy; otherwise it waits up to grace.
func (s *defaultScheduler) dispatch(ctx context.Context, target domain.CheckTarget, jobs chan<- domain.CheckTarget, grace time.Duration) bool {
	s.mu.RLock()
	if s.stopping {
		s.mu.RUnlock()
		return false
	}
	s.mu.RUnlock()

	name := target.Name()
	select {
	case jobs <- target:
		s.sent(name)
		return true
	default:
	}

	if grace > 0 {
		timer := time.NewTimer(grace)
		defer timer.Stop()

		select {
		case jobs <- target:
			s.sent(name)
			return true
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}

	s.logger.Warn("tick dropped, no idle worker",
		zap.String("target", name),
		zap.Duration("interval", target.Interval))
	s.metrics.RecordTickDropped(name)
	return false
}

func (s *defaultScheduler) sent(target string) {
	s.logger.Debug("sent job", zap.String("target", target))
	s.metrics.RecordTickDispatched(target)
}

func (s *defaultScheduler) Stop() error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	return nil
}

func (s *defaultScheduler) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running && !s.stopping
}

// every fires at a fixed delay after the previous activation. Unlike
// cron.Every it does not round to whole seconds.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
