package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/presentation/controllers/dtos"
	"github.com/taskvine/taskvine/modules/core/presentation/viewmodels"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/application"
	"github.com/taskvine/taskvine/pkg/httpapi"
	"github.com/taskvine/taskvine/pkg/middleware"
)

// ProjectsController exposes project CRUD and per-project permission grants.
// Projects are nested under their workspace for listing and creation.
type ProjectsController struct {
	basePath string
	projects *services.ProjectService
}

func NewProjectsController(projects *services.ProjectService) application.Controller {
	return &ProjectsController{
		basePath: "/api",
		projects: projects,
	}
}

func (c *ProjectsController) Key() string {
	return c.basePath + "/projects"
}

func (c *ProjectsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireUser())

	router.HandleFunc("/workspaces/{workspaceId}/projects", c.list).Methods(http.MethodGet)
	router.HandleFunc("/workspaces/{workspaceId}/projects", c.create).Methods(http.MethodPost)
	router.HandleFunc("/projects/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/projects/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/projects/{id}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/projects/{id}/archive", c.archive).Methods(http.MethodPost)
	router.HandleFunc("/projects/{id}/members", c.listMembers).Methods(http.MethodGet)
	router.HandleFunc("/projects/{id}/members", c.setMember).Methods(http.MethodPut)
	router.HandleFunc("/projects/{id}/members/{userId}", c.removeMember).Methods(http.MethodDelete)
}

func (c *ProjectsController) list(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathUUID(r, "workspaceId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	entities, err := c.projects.GetAllByWorkspace(r.Context(), workspaceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]*viewmodels.Project, 0, len(entities))
	for _, entity := range entities {
		out = append(out, viewmodels.NewProject(entity))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *ProjectsController) create(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathUUID(r, "workspaceId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	dto := &dtos.CreateProjectDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	created, err := c.projects.Create(r.Context(), project.New(workspaceID, dto.Name, project.WithDescription(dto.Description)))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, viewmodels.NewProject(created))
}

func (c *ProjectsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	entity, err := c.projects.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewProject(entity))
}

func (c *ProjectsController) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	dto := &dtos.UpdateProjectDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	current, err := c.projects.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	updated, err := c.projects.Update(r.Context(), current.Apply(dto.Name, dto.Description))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewProject(updated))
}

func (c *ProjectsController) archive(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	archived, err := c.projects.Archive(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewProject(archived))
}

func (c *ProjectsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	if err := c.projects.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *ProjectsController) listMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	memberships, err := c.projects.GetMemberships(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]*viewmodels.ProjectMembership, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, viewmodels.NewProjectMembership(m))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *ProjectsController) setMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	dto := &dtos.SetProjectMemberDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	permission, err := access.NewProjectPermission(dto.Permission)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_PERMISSION", err.Error(), nil)
		return
	}
	membership, err := c.projects.SetMemberPermission(r.Context(), id, uuid.MustParse(dto.UserID), permission)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewProjectMembership(membership))
}

func (c *ProjectsController) removeMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid project id", nil)
		return
	}
	userID, err := pathUUID(r, "userId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid user id", nil)
		return
	}
	if err := c.projects.RemoveMemberPermission(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
