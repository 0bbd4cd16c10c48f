package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/studycast/internal/api/shared"
)

// ollamaListTimeout bounds the model listing so /api/config stays fast when
// the local server is down.
const ollamaListTimeout = 3 * time.Second

// ModelLister lists the models installed on a local LLM server.
// ollama.Client satisfies it.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ConfigHandler serves the provider defaults the frontend builds its
// selectors from.
type ConfigHandler struct {
	base   ConfigResponse
	ollama ModelLister
	logger *slog.Logger
}

// NewConfigHandler creates a ConfigHandler. base carries the static defaults;
// its Ollama model list is filled per request. ollama may be nil.
func NewConfigHandler(base ConfigResponse, ollama ModelLister, logger *slog.Logger) (*ConfigHandler, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &ConfigHandler{base: base, ollama: ollama, logger: logger.With("component", "config_handler")}, nil
}

// GetConfig handles GET /api/config.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	resp := h.base
	resp.LLM.OllamaModels = h.ollamaModels(r.Context())
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ollamaModels returns the installed models, or an empty list when the
// server cannot be reached.
func (h *ConfigHandler) ollamaModels(ctx context.Context) []string {
	if h.ollama == nil {
		return []string{}
	}
	ctx, cancel := context.WithTimeout(ctx, ollamaListTimeout)
	defer cancel()

	models, err := h.ollama.ListModels(ctx)
	if err != nil {
		h.logger.DebugContext(ctx, "could not fetch Ollama models", "error", err)
		return []string{}
	}
	if models == nil {
		return []string{}
	}
	return models
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "ok"})
}
