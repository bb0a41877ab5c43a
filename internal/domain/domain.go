package domain

import (
	"time"
)

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeError    Outcome = "error"
)

// Checkpoint names in the order a transfer reaches them.
const (
	CheckpointNameLookup    = "namelookup"
	CheckpointConnect       = "connect"
	CheckpointAppConnect    = "appconnect"
	CheckpointPreTransfer   = "pretransfer"
	CheckpointStartTransfer = "starttransfer"
	CheckpointRedirect      = "redirect"
	CheckpointTotal         = "total"
)

// CheckpointOrder is the fixed set of checkpoints every probe reports.
var CheckpointOrder = []string{
	CheckpointNameLookup,
	CheckpointConnect,
	CheckpointAppConnect,
	CheckpointPreTransfer,
	CheckpointStartTransfer,
	CheckpointRedirect,
	CheckpointTotal,
}

// Checkpoint is the elapsed time in seconds from probe start to a milestone.
type Checkpoint struct {
	Name     string
	Reported float64
}

// Phase pairs the reported cumulative value with the derived non-negative
// duration attributed to it. Reported is kept as captured.
type Phase struct {
	Name     string
	Reported float64
	Diff     float64
}

type ProbeResult struct {
	Timestamp     time.Time
	Host          string
	Path          string
	URL           string
	Outcome       Outcome
	Error         string
	ResponseCode  int
	DownloadBytes int64
	Phases        []Phase
	Duration      time.Duration
}

func (r ProbeResult) Success() bool {
	return r.Outcome == OutcomeSuccess
}

func (r ProbeResult) TimedOut() bool {
	return r.Outcome == OutcomeTimedOut
}

func (r ProbeResult) Failed() bool {
	return r.Outcome == OutcomeError
}

// Phase returns the phase with the given checkpoint name.
func (r ProbeResult) Phase(name string) (Phase, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}
