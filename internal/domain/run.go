package domain

import "time"

// RunStatus is the outcome of a journaled invocation.
type RunStatus int

const (
	RunRunning RunStatus = iota
	RunSucceeded
	RunFailed
	RunPanicked
)

func (s RunStatus) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunSucceeded:
		return "ok"
	case RunFailed:
		return "failed"
	case RunPanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Run is one journaled command invocation.
type Run struct {
	ID           int64
	InvocationID string
	Command      string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       RunStatus
	Error        string
}

// Duration returns how long the run took, or zero if it has not finished.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
