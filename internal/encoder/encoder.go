// Package encoder renders probe results as Graphite plaintext metrics.
package encoder

import (
	"fmt"
	"math"

	"uptime-reporter/internal/domain"
)

const (
	ModeHostPath = "hostpath"
	ModeURL      = "url"
)

// Encoder maps a probe result onto a fixed, ordered set of metric lines.
type Encoder interface {
	Encode(result domain.ProbeResult) []domain.MetricLine
}

// New returns the encoder for mode. The two modes differ only in how the
// metric root is derived and which compatibility aliases are emitted.
func New(mode, prefix string) (Encoder, error) {
	switch mode {
	case ModeHostPath, "":
		return NewHostPathEncoder(prefix), nil
	case ModeURL:
		return NewURLEncoder(prefix), nil
	default:
		return nil, fmt.Errorf("unknown encoder mode: %s", mode)
	}
}

// HostPathEncoder roots metrics at <prefix>.<host>.<path>.
type HostPathEncoder struct {
	prefix string
}

func NewHostPathEncoder(prefix string) *HostPathEncoder {
	return &HostPathEncoder{prefix: prefix}
}

func (e *HostPathEncoder) Root(result domain.ProbeResult) string {
	return e.prefix + "." + Sanitize(result.Host) + "." + Sanitize(result.Path)
}

func (e *HostPathEncoder) Encode(result domain.ProbeResult) []domain.MetricLine {
	b := newBuilder(e.Root(result), result.Timestamp.Unix())
	b.phases(result)
	b.integer("status.success", flag(result.Success()))
	b.integer("status.timedout", flag(result.TimedOut()))
	b.integer("status.error", flag(result.Failed()))
	b.integer("responsecode", float64(result.ResponseCode))
	b.float("downloadbytes", float64(result.DownloadBytes))
	return b.lines
}

// URLEncoder is the single-target layout rooted at <prefix>.<url>. It emits
// the older leaf names (namelookuptime, responsetime, timedout, ...), but the
// root differs from the historical one: the scheme becomes "_" instead of
// being stripped, so "https://example.com" roots at "<prefix>._example_com".
type URLEncoder struct {
	prefix string
}

func NewURLEncoder(prefix string) *URLEncoder {
	return &URLEncoder{prefix: prefix}
}

func (e *URLEncoder) Root(result domain.ProbeResult) string {
	return e.prefix + "." + Sanitize(result.URL)
}

var legacyAliases = []struct {
	metric     string
	checkpoint string
}{
	{"namelookuptime", domain.CheckpointNameLookup},
	{"connecttime", domain.CheckpointConnect},
	{"appconnecttime", domain.CheckpointAppConnect},
	{"pretransfertime", domain.CheckpointPreTransfer},
	{"starttransfertime", domain.CheckpointStartTransfer},
	{"redirecttime", domain.CheckpointRedirect},
	{"responsetime", domain.CheckpointTotal},
}

func (e *URLEncoder) Encode(result domain.ProbeResult) []domain.MetricLine {
	b := newBuilder(e.Root(result), result.Timestamp.Unix())
	for _, alias := range legacyAliases {
		p := mustPhase(result, alias.checkpoint)
		b.float(alias.metric, p.Reported)
	}
	b.phases(result)
	b.integer("timedout", flag(result.TimedOut()))
	b.integer("error", flag(result.Failed()))
	b.integer("responsecode", float64(result.ResponseCode))
	b.float("downloadbytes", float64(result.DownloadBytes))
	return b.lines
}

type builder struct {
	root  string
	ts    int64
	lines []domain.MetricLine
}

func newBuilder(root string, ts int64) *builder {
	return &builder{
		root:  root,
		ts:    ts,
		lines: make([]domain.MetricLine, 0, 32),
	}
}

func (b *builder) add(name string, value float64, kind domain.ValueKind) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		panic(fmt.Sprintf("encoder: non-finite value for %s.%s", b.root, name))
	}
	b.lines = append(b.lines, domain.MetricLine{
		Path:      b.root + "." + name,
		Value:     value,
		Kind:      kind,
		Timestamp: b.ts,
	})
}

func (b *builder) float(name string, value float64) {
	b.add(name, value, domain.KindFloat)
}

func (b *builder) integer(name string, value float64) {
	b.add(name, value, domain.KindInteger)
}

func (b *builder) phases(result domain.ProbeResult) {
	for _, name := range domain.CheckpointOrder {
		p := mustPhase(result, name)
		b.float("time."+name+".reported", p.Reported)
		b.float("time."+name+".diff", p.Diff)
	}
}

// mustPhase panics when a checkpoint is missing: probes always report the
// full set, so a gap is a programming error upstream.
func mustPhase(result domain.ProbeResult, name string) domain.Phase {
	p, ok := result.Phase(name)
	if !ok {
		panic(fmt.Sprintf("encoder: probe result for %s has no %s phase", result.URL, name))
	}
	return p
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var (
	_ Encoder = (*HostPathEncoder)(nil)
	_ Encoder = (*URLEncoder)(nil)
)
