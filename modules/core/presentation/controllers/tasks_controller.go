package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/presentation/controllers/dtos"
	"github.com/taskvine/taskvine/modules/core/presentation/viewmodels"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/application"
	"github.com/taskvine/taskvine/pkg/httpapi"
	"github.com/taskvine/taskvine/pkg/middleware"
)

// TasksController exposes task CRUD and status transitions, nested under
// projects for listing and creation.
type TasksController struct {
	basePath string
	tasks    *services.TaskService
}

func NewTasksController(tasks *services.TaskService) application.Controller {
	return &TasksController{
		basePath: "/api",
		tasks:    tasks,
	}
}

func (c *TasksController) Key() string {
	return c.basePath + "/tasks"
}

func (c *TasksController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireUser())

	router.HandleFunc("/projects/{projectId}/tasks", c.list).Methods(http.MethodGet)
	router.HandleFunc("/projects/{projectId}/tasks", c.create).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/tasks/{id}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/tasks/{id}/status", c.changeStatus).Methods(http.MethodPut)
}

func (c *TasksController) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "projectId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	entities, err := c.tasks.GetAllByProject(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]*viewmodels.Task, 0, len(entities))
	for _, entity := range entities {
		out = append(out, viewmodels.NewTask(entity))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *TasksController) create(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "projectId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	dto := &dtos.CreateTaskDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	opts := taskOptions(dto.Description, dto.AssigneeID, dto.DueAt)
	created, err := c.tasks.Create(r.Context(), task.New(projectID, uuid.Nil, dto.Title, opts...))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, viewmodels.NewTask(created))
}

func (c *TasksController) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid task id", nil)
		return
	}
	entity, err := c.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewTask(entity))
}

func (c *TasksController) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid task id", nil)
		return
	}
	dto := &dtos.UpdateTaskDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	current, err := c.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	next := current.Apply(dto.Title, dto.Description)
	if dto.AssigneeID != "" {
		next = next.Assign(uuid.MustParse(dto.AssigneeID))
	}
	updated, err := c.tasks.Update(r.Context(), next)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewTask(updated))
}

func (c *TasksController) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid task id", nil)
		return
	}
	dto := &dtos.ChangeTaskStatusDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	status, err := task.NewStatus(dto.Status)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)
		return
	}
	updated, err := c.tasks.ChangeStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewTask(updated))
}

func (c *TasksController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid task id", nil)
		return
	}
	if err := c.tasks.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func taskOptions(description, assigneeID, dueAt string) []task.Option {
	var opts []task.Option
	if description != "" {
		opts = append(opts, task.WithDescription(description))
	}
	if assigneeID != "" {
		opts = append(opts, task.WithAssigneeID(uuid.MustParse(assigneeID)))
	}
	if dueAt != "" {
		// Validated as RFC 3339 by the DTO.
		parsed, _ := time.Parse(time.RFC3339, dueAt)
		opts = append(opts, task.WithDueAt(parsed))
	}
	return opts
}
