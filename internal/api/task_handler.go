package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studycast/internal/api/shared"
	"github.com/phrazzld/studycast/internal/domain"
)

// TaskTracker exposes the registry operations the task endpoints need.
// task.Registry satisfies it.
type TaskTracker interface {
	Get(id string) (domain.TaskState, bool)
	QueuePosition(id string) (int, bool)
	Cancel(id string)
}

// TaskHandler serves task status queries and cancellation requests.
type TaskHandler struct {
	tasks  TaskTracker
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks TaskTracker, logger *slog.Logger) (*TaskHandler, error) {
	if tasks == nil {
		return nil, errors.New("task tracker cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &TaskHandler{tasks: tasks, logger: logger.With("component", "task_handler")}, nil
}

// Status handles GET /api/task_status/{taskID}.
func (h *TaskHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := getPathTaskID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	state, ok := h.tasks.Get(id)
	if !ok {
		HandleAPIError(w, r, domain.ErrTaskNotFound, "")
		return
	}
	position, queued := h.tasks.QueuePosition(id)

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskStatusResponse(state, position, queued))
}

// Cancel handles POST /api/tasks/{taskID}/cancel. It is idempotent and
// unknown ids are accepted silently.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := getPathTaskID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.tasks.Cancel(id)
	h.logger.InfoContext(r.Context(), "task cancellation requested", "task_id", id)

	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "ok"})
}
