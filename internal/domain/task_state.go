package domain

import "time"

// TaskState is a snapshot of one task's lifecycle. It is a value type: the
// registry owns the live copy and hands out copies, so mutating a TaskState
// obtained from the registry has no effect on the registry.
type TaskState struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Stage     Stage
	Cancelled bool
}

// NewTaskState returns a queued, non-cancelled state created at now.
func NewTaskState(id string, now time.Time) TaskState {
	return TaskState{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Stage:     StageQueued,
	}
}

// Pending reports whether the task still counts toward queue positions.
func (t TaskState) Pending() bool {
	return !t.Stage.IsTerminal()
}
