package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/studycast/internal/api/shared"
	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/pipeline"
	"github.com/phrazzld/studycast/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"cancelled", fmt.Errorf("script: %w", domain.ErrCancelled), StatusClientClosedRequest},
		{"context cancelled via classify", pipeline.Classify(context.Canceled), StatusClientClosedRequest},
		{"validation", domain.NewValidationError("No usable content provided (PDF or text)."), http.StatusBadRequest},
		{"not found", domain.ErrTaskNotFound, http.StatusNotFound},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"provider unavailable", fmt.Errorf("summary: %w", domain.ErrProviderUnavailable), http.StatusServiceUnavailable},
		{"internal", fmt.Errorf("%w: boom", domain.ErrInternal), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		want        string
		notContains string
	}{
		{name: "nil", err: nil, want: msgInternal},
		{name: "cancelled", err: domain.ErrCancelled, want: msgCancelled},
		{
			name: "validation message is kept",
			err:  fmt.Errorf("extract: %w", domain.NewValidationError("No usable content provided (PDF or text).")),
			want: "No usable content provided (PDF or text).",
		},
		{name: "bare validation", err: domain.ErrValidation, want: msgInvalidInput},
		{name: "not found", err: domain.ErrTaskNotFound, want: msgTaskNotFound},
		{name: "token", err: auth.ErrExpiredToken, want: msgUnauthorized},
		{
			name:        "internal never leaks",
			err:         fmt.Errorf("%w: open /var/lib/studycast/clip.mp3: permission denied", domain.ErrInternal),
			want:        msgInternal,
			notContains: "/var/lib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.want, got)
			if tt.notContains != "" {
				assert.NotContains(t, got, tt.notContains)
			}
		})
	}

	t.Run("provider message is redacted", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("%w: openai rejected key sk-abcdefghijklmnopqrstuvwx", domain.ErrProviderUnavailable)
		got := GetSafeErrorMessage(err)
		assert.Contains(t, got, "provider unavailable")
		assert.NotContains(t, got, "sk-abcdefghijklmnopqrstuvwx")
	})
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/process", nil)
	req = req.WithContext(shared.SetTraceID(req.Context()))
	rec := httptest.NewRecorder()

	HandleAPIError(rec, req, fmt.Errorf("%w: panic in worker at /app/main.go", domain.ErrInternal), "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, msgInternal, body.Error)
	assert.Equal(t, shared.GetTraceID(req.Context()), body.TraceID)

	rec = httptest.NewRecorder()
	HandleAPIError(rec, req, domain.ErrTaskNotFound, "No such task")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No such task")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(ProcessForm{Duration: 500})
	require.Error(t, err)
	assert.Equal(t, "Invalid duration: too large", SanitizeValidationError(err))

	assert.Equal(t, "bad duration", SanitizeValidationError(domain.NewValidationError("bad duration")))
	assert.Equal(t, msgInvalidInput, SanitizeValidationError(errors.New("other")))
}
