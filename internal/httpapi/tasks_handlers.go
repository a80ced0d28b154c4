package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/tasks"
)

type TasksHandler struct {
	Enqueue func(target domain.SiteTarget) (string, error)
	Result  func(id string) (domain.TaskResult, bool)
}

// Apply queues one application task and answers 202 with the task id.
func (h TasksHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var target domain.SiteTarget
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if target.UserID <= 0 || target.JobURL == "" || target.Board == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "user_id, job_url and job_board are required")
		return
	}

	id, err := h.Enqueue(target)
	if errors.Is(err, tasks.ErrQueueFull) {
		WriteError(w, r, http.StatusServiceUnavailable, "queue_full", "task queue is full, try again later")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "enqueue_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"task_id": id})
}

// GetByPath answers /tasks/{id} with the finished task's result.
func (h TasksHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "expected /tasks/{id}")
		return
	}
	res, ok := h.Result(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "task not finished or unknown")
		return
	}
	writeJSON(w, res)
}
