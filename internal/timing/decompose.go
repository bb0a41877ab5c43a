// Package timing turns cumulative transfer checkpoints into per-phase
// durations.
package timing

import "uptime-reporter/internal/domain"

// Decompose attributes a non-negative duration to each checkpoint.
//
// A running total R starts at 0. For each checkpoint in order the diff is
// max(0, reported-R) and R grows by that diff. Cumulative timers are not
// strictly monotonic in degenerate runs, so the clamp keeps every diff >= 0
// while the reported value is passed through untouched.
func Decompose(checkpoints []domain.Checkpoint) []domain.Phase {
	phases := make([]domain.Phase, 0, len(checkpoints))
	running := 0.0
	for _, cp := range checkpoints {
		diff := cp.Reported - running
		if diff < 0 {
			diff = 0
		}
		running += diff
		phases = append(phases, domain.Phase{
			Name:     cp.Name,
			Reported: cp.Reported,
			Diff:     diff,
		})
	}
	return phases
}

// Checkpoints pairs values with domain.CheckpointOrder. Missing trailing
// values are zero-filled, extra values are ignored.
func Checkpoints(values ...float64) []domain.Checkpoint {
	cps := make([]domain.Checkpoint, len(domain.CheckpointOrder))
	for i, name := range domain.CheckpointOrder {
		cps[i].Name = name
		if i < len(values) {
			cps[i].Reported = values[i]
		}
	}
	return cps
}
