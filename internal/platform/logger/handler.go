package logger

import (
	"context"
	"log/slog"
)

// ContextHandler is a slog.Handler that adds the trace id and task id found
// in the record's context to every record before passing it on.
type ContextHandler struct {
	// The underlying handler (usually JSON)
	handler slog.Handler
}

// NewContextHandler wraps handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled implements the slog.Handler interface.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs implements the slog.Handler interface.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup implements the slog.Handler interface.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

// Handle implements the slog.Handler interface.
func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if ctx == nil {
		return h.handler.Handle(ctx, record)
	}

	traceID, taskID := TraceID(ctx), TaskID(ctx)
	if traceID == "" && taskID == "" {
		return h.handler.Handle(ctx, record)
	}

	// Clone the record to avoid modifying the original
	enhanced := record.Clone()
	if traceID != "" {
		enhanced.AddAttrs(slog.String("trace_id", traceID))
	}
	if taskID != "" {
		enhanced.AddAttrs(slog.String("task_id", taskID))
	}
	return h.handler.Handle(ctx, enhanced)
}
