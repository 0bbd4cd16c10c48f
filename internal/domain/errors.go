package domain

import "errors"

// Error taxonomy shared across the application. Lower layers wrap these with
// fmt.Errorf("%w: ...") and the API layer classifies them with errors.Is.
var (
	// ErrValidation is returned when the caller supplied no usable input or
	// an invalid option. Surfaced to clients as a client fault.
	ErrValidation = errors.New("validation failed")

	// ErrCancelled is returned when a task was cancelled explicitly or its
	// caller went away. It is a normal termination path, not a fault.
	ErrCancelled = errors.New("task cancelled")

	// ErrProviderUnavailable is returned when the configured LLM or synthesis
	// backend is unreachable or misconfigured (missing credentials, missing
	// model files, local service down).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrSynthesis is returned when audio generation for a single segment fails.
	ErrSynthesis = errors.New("audio synthesis failed")

	// ErrTaskNotFound is returned when a task id is not known to the registry.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInternal marks an unanticipated fault. Clients only ever see a
	// generic message for it.
	ErrInternal = errors.New("internal error")

	// ErrInvalidStage is returned when a stage value is not part of the stage set.
	ErrInvalidStage = errors.New("invalid task stage")
)

// NewValidationError wraps ErrValidation with a client-safe message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ValidationError carries a message that is safe to show to API clients.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
