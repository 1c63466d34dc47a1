package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/presentation/controllers/dtos"
	"github.com/taskvine/taskvine/modules/core/presentation/viewmodels"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/application"
	"github.com/taskvine/taskvine/pkg/httpapi"
	"github.com/taskvine/taskvine/pkg/middleware"
)

// WorkspacesController exposes the workspace REST API, including membership
// management and ownership transfer.
type WorkspacesController struct {
	basePath   string
	workspaces *services.WorkspaceService
	plans      *services.PlanService
}

func NewWorkspacesController(workspaces *services.WorkspaceService, plans *services.PlanService) application.Controller {
	return &WorkspacesController{
		basePath:   "/api/workspaces",
		workspaces: workspaces,
		plans:      plans,
	}
}

func (c *WorkspacesController) Key() string {
	return c.basePath
}

func (c *WorkspacesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireUser())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/members", c.listMembers).Methods(http.MethodGet)
	router.HandleFunc("/{id}/members", c.inviteMember).Methods(http.MethodPost)
	router.HandleFunc("/{id}/members/{userId}", c.updateMemberRole).Methods(http.MethodPut)
	router.HandleFunc("/{id}/members/{userId}", c.removeMember).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/transfer-ownership", c.transferOwnership).Methods(http.MethodPost)
	router.HandleFunc("/{id}/plan", c.assignPlan).Methods(http.MethodPut)
}

func (c *WorkspacesController) list(w http.ResponseWriter, r *http.Request) {
	entities, err := c.workspaces.GetAllForUser(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]*viewmodels.Workspace, 0, len(entities))
	for _, entity := range entities {
		out = append(out, viewmodels.NewWorkspace(entity))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *WorkspacesController) create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateWorkspaceDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	created, err := c.workspaces.Create(r.Context(), workspace.New(dto.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, viewmodels.NewWorkspace(created))
}

func (c *WorkspacesController) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	entity, err := c.workspaces.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewWorkspace(entity))
}

func (c *WorkspacesController) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	dto := &dtos.UpdateWorkspaceDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	current, err := c.workspaces.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	updated, err := c.workspaces.Update(r.Context(), current.Rename(dto.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewWorkspace(updated))
}

func (c *WorkspacesController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	if err := c.workspaces.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *WorkspacesController) listMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	members, err := c.workspaces.GetMembers(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]*viewmodels.WorkspaceMember, 0, len(members))
	for _, member := range members {
		out = append(out, viewmodels.NewWorkspaceMember(member))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *WorkspacesController) inviteMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	dto := &dtos.InviteMemberDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	userID := uuid.MustParse(dto.UserID)
	role, err := access.NewWorkspaceRole(dto.Role)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ROLE", err.Error(), nil)
		return
	}
	member, err := c.workspaces.InviteMember(r.Context(), id, userID, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, viewmodels.NewWorkspaceMember(member))
}

func (c *WorkspacesController) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	userID, err := pathUUID(r, "userId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid user id", nil)
		return
	}
	dto := &dtos.UpdateMemberRoleDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	role, err := access.NewWorkspaceRole(dto.Role)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ROLE", err.Error(), nil)
		return
	}
	member, err := c.workspaces.UpdateMemberRole(r.Context(), id, userID, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewWorkspaceMember(member))
}

func (c *WorkspacesController) removeMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	userID, err := pathUUID(r, "userId")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid user id", nil)
		return
	}
	if err := c.workspaces.RemoveMember(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *WorkspacesController) transferOwnership(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	dto := &dtos.TransferOwnershipDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	if err := c.workspaces.TransferOwnership(r.Context(), id, uuid.MustParse(dto.NewOwnerID)); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *WorkspacesController) assignPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid workspace id", nil)
		return
	}
	dto := &dtos.AssignPlanDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	updated, err := c.plans.AssignPlan(r.Context(), id, uuid.MustParse(dto.PlanID))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewWorkspace(updated))
}
