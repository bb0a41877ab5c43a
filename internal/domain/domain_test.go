package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckTargetURL(t *testing.T) {
	tests := []struct {
		name   string
		target CheckTarget
		want   string
	}{
		{
			name:   "Host with scheme",
			target: CheckTarget{Host: "https://example.com", Path: "/health"},
			want:   "https://example.com/health",
		},
		{
			name:   "Bare host",
			target: CheckTarget{Host: "example.com", Path: "/"},
			want:   "http://example.com/",
		},
		{
			name:   "Trailing slash on host",
			target: CheckTarget{Host: "https://example.com/", Path: "/a?b=1"},
			want:   "https://example.com/a?b=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.target.Interval = 5 * time.Second
			tt.target.Timeout = 30 * time.Second
			assert.Equal(t, tt.want, tt.target.URL())
		})
	}
}

func TestProbeResultPhaseLookup(t *testing.T) {
	r := ProbeResult{
		Outcome: OutcomeTimedOut,
		Phases: []Phase{
			{Name: CheckpointNameLookup, Reported: 0.1, Diff: 0.1},
			{Name: CheckpointTotal, Reported: 0.5, Diff: 0.4},
		},
	}

	p, ok := r.Phase(CheckpointTotal)
	assert.True(t, ok)
	assert.Equal(t, 0.4, p.Diff)

	_, ok = r.Phase(CheckpointRedirect)
	assert.False(t, ok)

	assert.True(t, r.TimedOut())
	assert.False(t, r.Success())
	assert.False(t, r.Failed())
}
