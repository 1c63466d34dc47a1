package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskvine/taskvine/modules/core/domain/entities/plan"
	"github.com/taskvine/taskvine/modules/core/presentation/controllers/dtos"
	"github.com/taskvine/taskvine/modules/core/presentation/viewmodels"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/application"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/httpapi"
	"github.com/taskvine/taskvine/pkg/middleware"
)

// PlansController manages the billing plan catalog. Plan CRUD is an
// operator surface; workspace-level authorization does not apply here.
type PlansController struct {
	basePath string
	plans    *services.PlanService
}

func NewPlansController(plans *services.PlanService) application.Controller {
	return &PlansController{
		basePath: "/api/plans",
		plans:    plans,
	}
}

func (c *PlansController) Key() string {
	return c.basePath
}

func (c *PlansController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireUser())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *PlansController) list(w http.ResponseWriter, r *http.Request) {
	entities, err := c.plans.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]*viewmodels.Plan, 0, len(entities))
	for _, entity := range entities {
		out = append(out, viewmodels.NewPlan(entity))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *PlansController) create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreatePlanDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	created, err := c.plans.Create(r.Context(), plan.New(
		dto.Key,
		dto.Name,
		plan.WithFeatures(planFeatures(dto.Features)),
		plan.WithLimits(planLimits(dto.Limits)),
	))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, viewmodels.NewPlan(created))
}

func (c *PlansController) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid plan id", nil)
		return
	}
	entity, err := c.plans.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewPlan(entity))
}

func (c *PlansController) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid plan id", nil)
		return
	}
	dto := &dtos.UpdatePlanDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationErrors(w, fields)
		return
	}
	current, err := c.plans.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	next := plan.New(
		current.Key(),
		dto.Name,
		plan.WithID(current.ID()),
		plan.WithFeatures(planFeatures(dto.Features)),
		plan.WithLimits(planLimits(dto.Limits)),
		plan.WithCreatedAt(current.CreatedAt()),
	)
	updated, err := c.plans.Update(r.Context(), next)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.NewPlan(updated))
}

func (c *PlansController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid plan id", nil)
		return
	}
	if err := c.plans.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func planFeatures(raw map[string]bool) map[entitlement.Feature]bool {
	out := make(map[entitlement.Feature]bool, len(raw))
	for k, v := range raw {
		out[entitlement.Feature(k)] = v
	}
	return out
}

func planLimits(raw map[string]int) map[entitlement.LimitType]int {
	out := make(map[entitlement.LimitType]int, len(raw))
	for k, v := range raw {
		out[entitlement.LimitType(k)] = v
	}
	return out
}
