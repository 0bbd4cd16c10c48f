package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/studycast/internal/domain"
)

// maxTaskIDLength bounds client-chosen task ids.
const maxTaskIDLength = 128

// getPathTaskID extracts the task id path parameter. Task ids are chosen by
// clients, so any non-blank value of reasonable length is accepted.
func getPathTaskID(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" {
		return "", domain.NewValidationError("task_id required")
	}
	if len(id) > maxTaskIDLength {
		return "", domain.NewValidationError("task_id too long")
	}
	return id, nil
}
