package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studycast/internal/api/shared"
	"github.com/phrazzld/studycast/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	t.Parallel()

	base, buf := logger.NewTestLogger()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).InfoContext(r.Context(), "handled")
		w.WriteHeader(http.StatusAccepted)
	})

	handler := chimw.RequestID(Trace(base)(next))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NotEmpty(t, traceID)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "request started", entries[0]["msg"])
	assert.Equal(t, "handled", entries[1]["msg"])
	assert.Equal(t, "request completed", entries[2]["msg"])
	assert.Equal(t, float64(http.StatusAccepted), entries[2]["status"])
	for _, e := range entries {
		assert.Equal(t, traceID, e["trace_id"])
		assert.Equal(t, "/api/health", e["path"])
		assert.NotEmpty(t, e["request_id"])
	}
}

func TestTraceDefaultsStatus(t *testing.T) {
	t.Parallel()

	base, buf := logger.NewTestLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	Trace(base)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, float64(http.StatusOK), last["status"])
	assert.Equal(t, float64(2), last["bytes"])
	_, hasReqID := last["request_id"]
	assert.False(t, hasReqID)
}
