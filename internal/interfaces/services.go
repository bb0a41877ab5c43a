package interfaces

import (
	"context"
)

// WorkerPool defines the interface for worker pool management
type WorkerPool interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// HealthChecker reports whether ticks are still being scheduled
type HealthChecker interface {
	IsHealthy() bool
}
