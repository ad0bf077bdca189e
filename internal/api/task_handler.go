package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskapi/internal/api/shared"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/phrazzld/taskapi/internal/task"
)

// TaskIDParam is the chi URL parameter naming a task.
const TaskIDParam = "task_id"

// TaskHandler handles task submission and lookup.
type TaskHandler struct {
	dispatcher task.Dispatcher
	logger     *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(dispatcher task.Dispatcher, logger *slog.Logger) *TaskHandler {
	if dispatcher == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("dispatcher cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "task_handler")),
	}
}

// SubmitTask handles POST /tasks/. It enqueues add_task and returns the task
// ID without waiting for the result.
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	x, y := DefaultX, DefaultY

	var req SubmitTaskRequest
	err := shared.DecodeJSON(w, r, &req)
	switch {
	case errors.Is(err, shared.ErrEmptyBody):
		// No body: submit the default arguments.
	case err != nil:
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	default:
		if err := shared.ValidateRequest(&req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
			return
		}
		x, y = *req.X, *req.Y
	}

	handle, err := h.dispatcher.Submit(r.Context(), task.AddTaskName, x, y)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("task submitted",
		slog.String("task_id", handle.ID),
		slog.String("task_name", handle.Name),
		slog.String("x", x.String()),
		slog.String("y", y.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitTaskResponse{TaskID: handle.ID})
}

// GetTask handles GET /tasks/{task_id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID := chi.URLParam(r, TaskIDParam)
	if _, err := uuid.Parse(taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid task_id: invalid format", err)
		return
	}

	info, err := h.dispatcher.Lookup(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task looked up",
		slog.String("task_id", info.ID),
		slog.String("state", string(info.State)))

	shared.RespondWithJSON(w, r, http.StatusOK, info)
}
