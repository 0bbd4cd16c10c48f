package audio

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studycast/internal/domain"
)

var (
	// ErrSynthesis is returned when a backend fails to produce audio for one segment.
	ErrSynthesis = domain.ErrSynthesis

	// ErrInvalidCredentials is returned when the hosted speech API rejects or
	// lacks an API key. It matches domain.ErrProviderUnavailable and is never
	// absorbed by a FailurePolicy.
	ErrInvalidCredentials = fmt.Errorf("%w: speech API key is missing or invalid", domain.ErrProviderUnavailable)

	// ErrModelNotFound is returned when a local voice model file is missing.
	// It matches domain.ErrProviderUnavailable.
	ErrModelNotFound = fmt.Errorf("%w: voice model file not found", domain.ErrProviderUnavailable)

	// ErrAssembly is returned when clips could not be joined into one file.
	ErrAssembly = errors.New("audio assembly failed")

	// ErrNoClips is returned when Assemble is called without any clip.
	ErrNoClips = errors.New("no audio clips to assemble")

	// ErrNilBackend is returned when a Synthesizer is built without a backend.
	ErrNilBackend = errors.New("backend cannot be nil")

	// ErrNilLogger is returned when a constructor receives a nil logger.
	ErrNilLogger = errors.New("logger cannot be nil")
)

// APIError is a non-success response from the hosted speech API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Code is the error code from the API (if provided).
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("speech API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("speech API error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized returns true for a rejected or missing API key.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.Code == "invalid_api_key"
}

// IsRetryable returns true for rate limiting and server errors.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
