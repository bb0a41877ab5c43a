package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"uptime-reporter/internal/domain"
)

// Module provides the metrics collector
var Module = fx.Options(
	fx.Provide(func() prometheus.Registerer { return prometheus.DefaultRegisterer }),
	fx.Provide(func() prometheus.Gatherer { return prometheus.DefaultGatherer }),
	fx.Provide(NewCollector),
	fx.Provide(func(c *Collector) domain.MetricsCollector { return c }),
	fx.Provide(NewServer),
	fx.Invoke(registerServerHooks),
)

type Collector struct {
	logger          *zap.Logger
	probesTotal     *prometheus.CounterVec
	probeDuration   *prometheus.HistogramVec
	lastProbeStatus *prometheus.GaugeVec
	ticksDispatched *prometheus.CounterVec
	ticksDropped    *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
	busyWorkers     prometheus.Gauge
	workerCapacity  prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		logger: logger,
		probesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uptime_probes_total",
				Help: "Total number of probes performed",
			},
			[]string{"target", "outcome"},
		),
		probeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uptime_probe_duration_seconds",
				Help:    "Wall-clock duration of probes",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"target"},
		),
		lastProbeStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "uptime_probe_success",
				Help: "Latest probe outcome (1 for success, 0 otherwise)",
			},
			[]string{"target"},
		),
		ticksDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uptime_ticks_dispatched_total",
				Help: "Total number of ticks handed to a worker",
			},
			[]string{"target"},
		),
		ticksDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uptime_ticks_dropped_total",
				Help: "Total number of ticks dropped because no worker was idle",
			},
			[]string{"target"},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uptime_deliveries_total",
				Help: "Total number of metric batches sent to the collector",
			},
			[]string{"target", "result"},
		),
		busyWorkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "uptime_busy_workers",
				Help: "Number of workers currently running a probe",
			},
		),
		workerCapacity: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "uptime_worker_capacity",
				Help: "Size of the worker pool",
			},
		),
	}
}

func (c *Collector) RecordProbe(result domain.ProbeResult) {
	target := result.Host + result.Path
	c.probesTotal.WithLabelValues(target, string(result.Outcome)).Inc()
	c.probeDuration.WithLabelValues(target).Observe(result.Duration.Seconds())

	status := 0.0
	if result.Success() {
		status = 1.0
	}
	c.lastProbeStatus.WithLabelValues(target).Set(status)
}

func (c *Collector) RecordDelivery(target string, err error) {
	if err != nil {
		c.deliveries.WithLabelValues(target, "failed").Inc()
		return
	}
	c.deliveries.WithLabelValues(target, "ok").Inc()
}

func (c *Collector) RecordTickDispatched(target string) {
	c.ticksDispatched.WithLabelValues(target).Inc()
}

func (c *Collector) RecordTickDropped(target string) {
	c.ticksDropped.WithLabelValues(target).Inc()
}

func (c *Collector) RecordWorkerBusy() {
	c.busyWorkers.Inc()
}

func (c *Collector) RecordWorkerIdle() {
	c.busyWorkers.Dec()
}

func (c *Collector) SetWorkerCapacity(n int) {
	c.workerCapacity.Set(float64(n))
}

var _ domain.MetricsCollector = (*Collector)(nil)
