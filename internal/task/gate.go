package task

import (
	"context"
	"fmt"
)

// Gate is the cancellation check for one task. Pipeline code calls Check
// immediately before every expensive step; cancellation therefore takes
// effect at the next check, not in the middle of a call already in flight.
type Gate struct {
	registry *Registry
	taskID   string
}

// NewGate returns the gate for taskID.
func NewGate(registry *Registry, taskID string) *Gate {
	return &Gate{registry: registry, taskID: taskID}
}

// TaskID returns the id of the task this gate watches.
func (g *Gate) TaskID() string {
	return g.taskID
}

// Check returns ErrCancelled when ctx is done (the caller went away) or the
// task was cancelled through the registry. Otherwise it returns nil.
func (g *Gate) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: caller disconnected: %v", ErrCancelled, err)
	}
	if g.registry != nil && g.registry.IsCancelled(g.taskID) {
		return fmt.Errorf("%w: cancelled by request", ErrCancelled)
	}
	return nil
}
