package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/service"
)

// TaskHandler handles task creation and status requests
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Routes registers the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/items/{id}/tasks", h.CreateTask)
	r.Get("/tasks/{id}", h.GetTask)
	r.Get("/services/tasks/{collection}/{id}/status", h.GetTask)
}

// CreateTask handles POST /items/{id}/tasks. The task completes later, so
// the response is 202 with the pending task and its monitor URL. An empty
// body decodes to an empty request so an unknown item still reports 404.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req domain.TaskRequest
	if err := shared.DecodeOptionalJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), chi.URLParam(r, "id"), req, RequestOrigin(r))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if task.MonitorURL != "" {
		w.Header().Set("Location", task.MonitorURL)
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, task)
}

// GetTask handles GET /tasks/{id} and the monitor URL route. The collection
// segment of the monitor route is informational and not checked.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// RequestOrigin returns the scheme and host the client used to reach us.
// X-Forwarded-Proto is honored so monitor URLs stay correct behind a TLS
// terminating proxy.
func RequestOrigin(r *http.Request) service.Origin {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		proto = strings.ToLower(strings.TrimSpace(strings.SplitN(proto, ",", 2)[0]))
		if proto == "http" || proto == "https" {
			scheme = proto
		}
	}
	return service.Origin{Scheme: scheme, Host: r.Host}
}
