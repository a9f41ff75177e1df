package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/handler/http/response"
)

type TaskHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
	EmployeeAssignments(w http.ResponseWriter, r *http.Request)
}

type TaskHandlerImpl struct {
	taskService task.TaskService
}

func NewTaskHandler(taskService task.TaskService) TaskHandler {
	return &TaskHandlerImpl{taskService: taskService}
}

func taskIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// List implements TaskHandler.
func (h *TaskHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.Context())
	if err != nil {
		slog.Error("Task list error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, tasks)
}

// Get implements TaskHandler.
func (h *TaskHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}
	t, err := h.taskService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, t)
}

// Create implements TaskHandler.
func (h *TaskHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var createReq task.CreateTaskRequest

	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := createReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.taskService.Create(r.Context(), createReq)
	if err != nil {
		slog.Error("Task create error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task created", created)
}

// Update implements TaskHandler.
func (h *TaskHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}

	var updateReq task.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := updateReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.taskService.Update(r.Context(), id, updateReq)
	if err != nil {
		slog.Error("Task update error", "error", err, "task_id", id)
		response.HandleError(w, err)
		return
	}
	response.Success(w, updated)
}

// Assign implements TaskHandler.
func (h *TaskHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}
	login := chi.URLParam(r, "login")

	if err := h.taskService.Assign(r.Context(), login, id); err != nil {
		slog.Error("Task assign error", "error", err, "task_id", id, "login", login)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task assigned", nil)
}

// Unassign implements TaskHandler.
func (h *TaskHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}
	login := chi.URLParam(r, "login")

	if err := h.taskService.SetAssignmentActive(r.Context(), login, id, false); err != nil {
		slog.Error("Task unassign error", "error", err, "task_id", id, "login", login)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task unassigned", nil)
}

// EmployeeAssignments implements TaskHandler.
func (h *TaskHandlerImpl) EmployeeAssignments(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	assignments, err := h.taskService.AssignmentsForEmployee(r.Context(), login)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, assignments)
}
