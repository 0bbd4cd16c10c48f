package task

import (
	"errors"

	"github.com/phrazzld/studycast/internal/domain"
)

// Common errors returned by the task package.
var (
	// ErrCancelled is returned by a Gate once the caller disconnected or the
	// task was cancelled. It is the same value as domain.ErrCancelled.
	ErrCancelled = domain.ErrCancelled

	// ErrInvalidTransition is returned by SetStage when the requested stage
	// is not reachable from the task's current stage.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrNilLogger is returned when a constructor receives a nil logger.
	ErrNilLogger = errors.New("logger cannot be nil")

	// ErrNilRegistry is returned when a constructor receives a nil registry.
	ErrNilRegistry = errors.New("registry cannot be nil")
)
