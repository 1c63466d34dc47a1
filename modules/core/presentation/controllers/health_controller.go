package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskvine/taskvine/pkg/application"
	"github.com/taskvine/taskvine/pkg/httpapi"
)

type HealthController struct {
	basePath string
	pool     *pgxpool.Pool
}

func NewHealthController(pool *pgxpool.Pool) application.Controller {
	return &HealthController{
		basePath: "/health",
		pool:     pool,
	}
}

func (c *HealthController) Key() string {
	return c.basePath
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.health).Methods(http.MethodGet)
}

func (c *HealthController) health(w http.ResponseWriter, r *http.Request) {
	if err := c.pool.Ping(r.Context()); err != nil {
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database unreachable", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
