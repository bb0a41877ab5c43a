// Package registry holds the static list of configured check targets.
package registry

import (
	"fmt"
	"net/url"
	"time"

	"uptime-reporter/internal/config"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/encoder"
)

// Registry is read-only after New returns and is safe for concurrent use.
type Registry struct {
	targets []domain.CheckTarget
}

func New(cfg *config.Config) (*Registry, error) {
	if len(cfg.Checks) == 0 {
		return nil, fmt.Errorf("no checks configured")
	}

	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	targets := make([]domain.CheckTarget, 0, len(cfg.Checks))
	for i, check := range cfg.Checks {
		path := check.Path
		if path == "" && cfg.Encoder != encoder.ModeURL {
			path = "/"
		}

		target := domain.CheckTarget{
			Host:     check.Host,
			Path:     path,
			Interval: check.GetInterval(),
			Timeout:  timeout,
		}
		if err := validateTarget(target); err != nil {
			return nil, fmt.Errorf("invalid check #%d (%s): %w", i+1, target.Name(), err)
		}
		targets = append(targets, target)
	}

	return &Registry{targets: targets}, nil
}

func validateTarget(t domain.CheckTarget) error {
	if t.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", t.Interval)
	}
	u, err := url.Parse(t.URL())
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// Targets returns a copy of the configured targets in configuration order.
func (r *Registry) Targets() []domain.CheckTarget {
	return append([]domain.CheckTarget(nil), r.targets...)
}

func (r *Registry) Len() int {
	return len(r.targets)
}

// RequiredCapacity is the worker count needed so that no tick finds the pool
// exhausted, see RequiredCapacity.
func (r *Registry) RequiredCapacity() int {
	return RequiredCapacity(r.targets)
}

// RequiredCapacity sums ceil(timeout/interval) over targets: in the worst
// case every invocation of a target blocks for the full timeout, so that many
// invocations of it can overlap.
func RequiredCapacity(targets []domain.CheckTarget) int {
	total := 0
	for _, t := range targets {
		total += overlap(t.Timeout, t.Interval)
	}
	return total
}

// PoolSize is the worker count that keeps every tick admitted when each job
// holds its worker for the probe timeout plus up to delivery for the send.
func (r *Registry) PoolSize(delivery time.Duration) int {
	return PoolSize(r.targets, delivery)
}

// PoolSize sums floor(hold/interval)+1 over targets, where hold is the
// timeout plus delivery. A job that times out finishes just after its
// deadline, so the tick landing exactly hold later still sees it running.
// The result is never below RequiredCapacity.
func PoolSize(targets []domain.CheckTarget, delivery time.Duration) int {
	total := 0
	for _, t := range targets {
		if t.Interval <= 0 {
			total++
			continue
		}
		total += int((t.Timeout+delivery)/t.Interval) + 1
	}
	return total
}

func overlap(timeout, interval time.Duration) int {
	if interval <= 0 {
		return 1
	}
	n := int((timeout + interval - 1) / interval)
	if n < 1 {
		n = 1
	}
	return n
}
