package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studycast/internal/api/shared"
	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/redact"
	"github.com/phrazzld/studycast/internal/service/auth"
)

// StatusClientClosedRequest is the non-standard status reported when a run
// was cancelled by the client or its connection went away.
const StatusClientClosedRequest = 499

// Client-facing messages for outcomes whose details are never exposed.
const (
	msgCancelled    = "Client disconnected or cancelled"
	msgTaskNotFound = "Unknown task"
	msgUnauthorized = "Invalid token"
	msgInternal     = "Internal server error"
	msgInvalidInput = "Validation error"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based on
// the domain taxonomy. Unrecognised errors are internal faults.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrCancelled):
		return StatusClientClosedRequest
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message shown to clients for err. Input
// errors carry their own client-safe text, provider errors are redacted and
// internal errors never reveal anything.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgInternal
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrCancelled):
		return msgCancelled
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, domain.ErrValidation):
		return msgInvalidInput
	case errors.Is(err, domain.ErrTaskNotFound):
		return msgTaskNotFound
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return msgUnauthorized
	case errors.Is(err, domain.ErrProviderUnavailable):
		return redact.Error(err)
	default:
		return msgInternal
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted detail. fallback replaces the derived message when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator failures into a client message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return msgInvalidInput
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "printascii":
		return "invalid characters"
	default:
		return "validation failed"
	}
}
