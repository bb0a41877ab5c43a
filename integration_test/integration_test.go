package integration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"uptime-reporter/internal/checker"
	"uptime-reporter/internal/config"
	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/encoder"
	"uptime-reporter/internal/exporter"
	"uptime-reporter/internal/interfaces"
	"uptime-reporter/internal/registry"
	"uptime-reporter/internal/timing"
	"uptime-reporter/internal/worker"
)

// Mock Implementations

type MockProber struct {
	mu       sync.Mutex
	Calls    map[string]int
	Outcomes map[string]domain.Outcome
}

func NewMockProber() *MockProber {
	return &MockProber{
		Calls:    make(map[string]int),
		Outcomes: make(map[string]domain.Outcome),
	}
}

func (m *MockProber) Probe(_ context.Context, target domain.CheckTarget) domain.ProbeResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[target.Name()]++

	outcome, ok := m.Outcomes[target.Name()]
	if !ok {
		outcome = domain.OutcomeSuccess
	}
	result := domain.ProbeResult{
		Timestamp: time.Now(),
		Host:      target.Host,
		Path:      target.Path,
		URL:       target.URL(),
		Outcome:   outcome,
		Phases:    timing.Decompose(timing.Checkpoints(0.01, 0.02, 0.05, 0.05, 0.08, 0, 0.09)),
	}
	if outcome == domain.OutcomeSuccess {
		result.ResponseCode = 200
		result.DownloadBytes = 512
	}
	return result
}

func (m *MockProber) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

type MockSink struct {
	mu      sync.Mutex
	Batches [][]domain.MetricLine
	Err     error
}

func (m *MockSink) Send(_ context.Context, lines []domain.MetricLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, lines)
	return m.Err
}

func (m *MockSink) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, batch := range m.Batches {
		for _, line := range batch {
			out = append(out, encoder.FormatLine(line))
		}
	}
	return out
}

type MockMetricsCollector struct {
	domain.NopCollector
	mu         sync.Mutex
	Probes     []domain.ProbeResult
	Deliveries map[bool]int
	Capacity   int
}

func NewMockMetricsCollector() *MockMetricsCollector {
	return &MockMetricsCollector{Deliveries: make(map[bool]int)}
}

func (m *MockMetricsCollector) RecordProbe(result domain.ProbeResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Probes = append(m.Probes, result)
}

func (m *MockMetricsCollector) RecordDelivery(_ string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deliveries[err == nil]++
}

func (m *MockMetricsCollector) SetWorkerCapacity(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Capacity = n
}

func (m *MockMetricsCollector) counts() (probes, delivered, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Probes), m.Deliveries[true], m.Deliveries[false]
}

func createTestConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

const twoChecks = `
metric_prefix: uptime
encoder: hostpath
run_on_start: true
timeout: 2
collector:
  host: 127.0.0.1
  port: 2003
checks:
  - host: https://example.com
    interval: 1
  - host: http://status.example.org
    path: /health
    interval: 1
`

func createTestModule(prober checker.Prober, sink exporter.Sink, collector domain.MetricsCollector) fx.Option {
	return fx.Options(
		registry.Module,
		encoder.Module,
		worker.Module,
		fx.Provide(func() checker.Prober { return prober }),
		fx.Provide(func() exporter.Sink { return sink }),
		fx.Provide(func() domain.MetricsCollector { return collector }),
	)
}

func TestApplicationIntegration(t *testing.T) {
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	cfg := createTestConfig(t, twoChecks)

	prober := NewMockProber()
	sink := &MockSink{}
	mockMetrics := NewMockMetricsCollector()

	var health interfaces.HealthChecker
	app := fx.New(
		fx.Supply(logger),
		fx.Supply("test"),
		fx.Provide(func() *config.Config { return cfg }),
		createTestModule(prober, sink, mockMetrics),
		fx.Populate(&health),
		fx.NopLogger,
	)
	require.NoError(t, app.Err())

	startCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(startCtx))

	t.Run("Application Started Successfully", func(t *testing.T) {
		assert.Eventually(t, health.IsHealthy, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("Every Check Is Probed", func(t *testing.T) {
		assert.Eventually(t, func() bool {
			return prober.CallCount("https://example.com/") >= 2 &&
				prober.CallCount("http://status.example.org/health") >= 2
		}, 5*time.Second, 20*time.Millisecond)

		probes, delivered, failed := mockMetrics.counts()
		assert.GreaterOrEqual(t, probes, 4)
		assert.GreaterOrEqual(t, delivered, 4)
		assert.Zero(t, failed)
		mockMetrics.mu.Lock()
		// floor((2s timeout + 2*5s io_timeout) / 1s) + 1 per check
		assert.Equal(t, 26, mockMetrics.Capacity)
		mockMetrics.mu.Unlock()
	})

	t.Run("Batches Use Host Path Layout", func(t *testing.T) {
		lines := sink.Lines()
		require.NotEmpty(t, lines)

		var sawExample, sawStatus bool
		for _, line := range lines {
			fields := strings.Fields(line)
			require.Len(t, fields, 3, line)
			if strings.HasPrefix(line, "uptime._example_com._.time.connect.diff 0.010000 ") {
				sawExample = true
			}
			if strings.HasPrefix(line, "uptime._status_example_org._health.status.success 1 ") {
				sawStatus = true
			}
		}
		assert.True(t, sawExample)
		assert.True(t, sawStatus)
	})

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Stop(stopCtx))

	t.Run("Application Stopped Successfully", func(t *testing.T) {
		assert.False(t, health.IsHealthy())
	})
}

func TestDeliveryFailures(t *testing.T) {
	logger := zaptest.NewLogger(t, zaptest.Level(zap.ErrorLevel))
	cfg := createTestConfig(t, twoChecks)

	prober := NewMockProber()
	prober.Outcomes["https://example.com/"] = domain.OutcomeTimedOut
	sink := &MockSink{Err: errors.New("connection refused")}
	mockMetrics := NewMockMetricsCollector()

	app := fx.New(
		fx.Supply(logger),
		fx.Supply("test"),
		fx.Provide(func() *config.Config { return cfg }),
		createTestModule(prober, sink, mockMetrics),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(startCtx))

	assert.Eventually(t, func() bool {
		_, _, failed := mockMetrics.counts()
		return failed >= 4
	}, 5*time.Second, 20*time.Millisecond, "checks keep running while the collector is down")

	lines := sink.Lines()
	var timedOut bool
	for _, line := range lines {
		if strings.HasPrefix(line, "uptime._example_com._.status.timedout 1 ") {
			timedOut = true
		}
	}
	assert.True(t, timedOut, "timed out probes are still reported")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Stop(stopCtx))
}

func TestFailureScenarios(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(*config.Config)
		wantErr string
	}{
		{
			name: "unsupported scheme",
			cfg: func(c *config.Config) {
				c.Checks[0].Host = "ftp://example.com"
			},
			wantErr: "unsupported scheme",
		},
		{
			name: "non-positive interval",
			cfg: func(c *config.Config) {
				c.Checks[1].Interval = 0
			},
			wantErr: "interval must be positive",
		},
		{
			name: "unknown encoder",
			cfg: func(c *config.Config) {
				c.Encoder = "pickle"
			},
			wantErr: "unknown encoder mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig(t, twoChecks)
			tt.cfg(cfg)

			app := fx.New(
				fx.Supply(zap.NewNop()),
				fx.Provide(func() *config.Config { return cfg }),
				createTestModule(NewMockProber(), &MockSink{}, NewMockMetricsCollector()),
				fx.NopLogger,
			)
			require.Error(t, app.Err())
			assert.Contains(t, app.Err().Error(), tt.wantErr)
		})
	}
}
