package worker

import "fmt"

const (
	StageProbe   = "probe"
	StageDeliver = "deliver"
)

// JobError represents an error that occurred while running a check
type JobError struct {
	Stage   string // The stage where the error occurred
	Message string // Human-readable error message
	Err     error  // Original error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

func NewJobError(stage, message string, err error) error {
	return &JobError{
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}
