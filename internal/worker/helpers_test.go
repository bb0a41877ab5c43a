package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/timing"
)

type fakeProber struct {
	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	block       chan struct{}
	delay       time.Duration
	outcome     domain.Outcome
}

func (f *fakeProber) Probe(ctx context.Context, target domain.CheckTarget) domain.ProbeResult {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}

	outcome := f.outcome
	if outcome == "" {
		outcome = domain.OutcomeSuccess
	}
	return domain.ProbeResult{
		Timestamp:    time.Now(),
		Host:         target.Host,
		Path:         target.Path,
		URL:          target.URL(),
		Outcome:      outcome,
		ResponseCode: 200,
		Phases:       timing.Decompose(timing.Checkpoints(0.1, 0.2, 0.2, 0.2, 0.3, 0, 0.4)),
	}
}

type fakeSink struct {
	mu      sync.Mutex
	batches map[string]int
	sizes   []int
	err     error
	delay   time.Duration
}

func newFakeSink(err error) *fakeSink {
	return &fakeSink{batches: make(map[string]int), err: err}
}

func (f *fakeSink) Send(_ context.Context, lines []domain.MetricLine) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes = append(f.sizes, len(lines))
	if len(lines) > 0 {
		f.batches[lines[0].Path]++
	}
	return f.err
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sizes)
}

func (f *fakeSink) roots() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.batches))
	for k, v := range f.batches {
		out[k] = v
	}
	return out
}

// stuckProber ignores cancellation and only returns once release is closed.
type stuckProber struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stuckProber) Probe(_ context.Context, target domain.CheckTarget) domain.ProbeResult {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return domain.ProbeResult{
		Host:    target.Host,
		Path:    target.Path,
		URL:     target.URL(),
		Outcome: domain.OutcomeTimedOut,
		Phases:  timing.Decompose(timing.Checkpoints()),
	}
}

type panicEncoder struct {
	calls atomic.Int32
}

func (p *panicEncoder) Encode(domain.ProbeResult) []domain.MetricLine {
	p.calls.Add(1)
	panic("encoder defect")
}

type countingCollector struct {
	domain.NopCollector
	dispatched atomic.Int32
	dropped    atomic.Int32
	delivered  atomic.Int32
	failed     atomic.Int32
	capacity   atomic.Int32
}

func (c *countingCollector) RecordTickDispatched(string) { c.dispatched.Add(1) }
func (c *countingCollector) RecordTickDropped(string)    { c.dropped.Add(1) }
func (c *countingCollector) SetWorkerCapacity(n int)     { c.capacity.Store(int32(n)) }

func (c *countingCollector) RecordDelivery(_ string, err error) {
	if err != nil {
		c.failed.Add(1)
		return
	}
	c.delivered.Add(1)
}

func target(host string, interval, timeout time.Duration) domain.CheckTarget {
	return domain.CheckTarget{Host: host, Path: "/", Interval: interval, Timeout: timeout}
}
