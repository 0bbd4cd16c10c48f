package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/studycast/internal/api/shared"
	"github.com/phrazzld/studycast/internal/domain"
	"github.com/phrazzld/studycast/internal/extract"
	"github.com/phrazzld/studycast/internal/pipeline"
)

// Upload limits for POST /api/process.
const (
	DefaultMaxUploadBytes = 32 << 20
	multipartMemoryBytes  = 8 << 20
)

// PipelineRunner executes one pipeline run. pipeline.Orchestrator satisfies it.
type PipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) (domain.PipelineResult, error)
}

// ProcessHandler handles POST /api/process.
type ProcessHandler struct {
	runner         PipelineRunner
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewProcessHandler creates a ProcessHandler. maxUploadBytes <= 0 selects
// DefaultMaxUploadBytes.
func NewProcessHandler(runner PipelineRunner, maxUploadBytes int64, logger *slog.Logger) (*ProcessHandler, error) {
	if runner == nil {
		return nil, errors.New("pipeline runner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ProcessHandler{
		runner:         runner,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "process_handler"),
	}, nil
}

// Process runs the whole pipeline synchronously for the submitted material.
// The request context doubles as the disconnect signal, so a client that
// goes away cancels its own run at the next gate check.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemoryBytes)
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Upload too large", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	form, err := parseProcessForm(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	file, filename, err := shared.FormFile(r, "file", h.maxUploadBytes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, shared.ErrFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		shared.RespondWithErrorAndLog(w, r, status, "Invalid file upload", err)
		return
	}

	if form.TaskID == "" {
		form.TaskID = uuid.NewString()
	}

	req := pipeline.Request{
		TaskID:          form.TaskID,
		Input:           extract.Input{File: file, Filename: filename, Text: form.Text},
		DurationMinutes: form.Duration,
		Style:           form.Style,
		LLMProvider:     form.LLMProvider,
		LLMModel:        form.LLMModel,
		TTSProvider:     form.TTSProvider,
	}

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newProcessResponse(result))
}

// parseProcessForm reads and validates the scalar form fields.
func parseProcessForm(r *http.Request) (ProcessForm, error) {
	duration, err := shared.FormInt(r, "duration", 0)
	if err != nil {
		return ProcessForm{}, domain.NewValidationError("duration must be a whole number of minutes")
	}

	form := ProcessForm{
		Text:        r.FormValue("text"),
		Duration:    duration,
		Style:       shared.FormString(r, "style"),
		LLMProvider: shared.FormString(r, "llm_provider"),
		LLMModel:    shared.FormString(r, "llm_model"),
		TTSProvider: shared.FormString(r, "tts_provider"),
		TaskID:      shared.FormString(r, "task_id"),
	}
	if err := shared.ValidateRequest(form); err != nil {
		return ProcessForm{}, err
	}
	return form, nil
}
