package domain

type ValueKind int

const (
	KindFloat ValueKind = iota
	KindInteger
)

// MetricLine is a single fact in a batch sent to the collector.
type MetricLine struct {
	Path      string
	Value     float64
	Kind      ValueKind
	Timestamp int64
}

type MetricsCollector interface {
	RecordProbe(ProbeResult)
	RecordDelivery(target string, err error)
	RecordTickDispatched(target string)
	RecordTickDropped(target string)
	RecordWorkerBusy()
	RecordWorkerIdle()
	SetWorkerCapacity(n int)
}

// NopCollector discards everything.
type NopCollector struct{}

func (NopCollector) RecordProbe(ProbeResult) {}
func (NopCollector) RecordDelivery(string, error) {}
func (NopCollector) RecordTickDispatched(string) {}
func (NopCollector) RecordTickDropped(string) {}
func (NopCollector) RecordWorkerBusy() {}
func (NopCollector) RecordWorkerIdle() {}
func (NopCollector) SetWorkerCapacity(int) {}

var _ MetricsCollector = NopCollector{}
