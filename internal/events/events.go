package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studycast/internal/domain"
)

// StageChangedEvent is published after a task moved from one stage to another.
// It carries only identifiers and stage names so handlers never touch the
// registry's internal state.
type StageChangedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// TaskID identifies the task whose stage changed
	TaskID string `json:"task_id"`

	// From is the stage the task left
	From domain.Stage `json:"from"`

	// To is the stage the task entered
	To domain.Stage `json:"to"`

	// OccurredAt is the timestamp of the transition
	OccurredAt time.Time `json:"occurred_at"`
}

// NewStageChangedEvent creates a new StageChangedEvent stamped with the current time.
func NewStageChangedEvent(taskID string, from, to domain.Stage) *StageChangedEvent {
	return &StageChangedEvent{
		ID:         uuid.New(),
		TaskID:     taskID,
		From:       from,
		To:         to,
		OccurredAt: time.Now().UTC(),
	}
}

// Terminal reports whether the event moved the task into a terminal stage.
func (e *StageChangedEvent) Terminal() bool {
	return e.To.IsTerminal()
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StageChangedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the registry to publish transitions without knowing who listens.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *StageChangedEvent) error
}
