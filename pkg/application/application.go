package application

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskvine/taskvine/pkg/eventbus"
)

// Controller is a routable unit. Key is a stable identifier used for
// registration bookkeeping and logs.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module is a self-contained feature set that wires its own repositories,
// services and controllers into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

// Application aggregates everything the HTTP server needs to serve traffic:
// the database pool, the in-process event bus, registered controllers and
// the middleware chain applied ahead of them.
type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
}

func New(pool *pgxpool.Pool, publisher eventbus.EventBus) Application {
	return &application{
		pool:        pool,
		eventBus:    publisher,
		controllers: make(map[string]Controller),
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	controllers map[string]Controller
	order       []string
	middleware  []mux.MiddlewareFunc
}

func (a *application) DB() *pgxpool.Pool {
	return a.pool
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventBus
}

func (a *application) Controllers() []Controller {
	out := make([]Controller, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.controllers[key])
	}
	return out
}

func (a *application) Middleware() []mux.MiddlewareFunc {
	return a.middleware
}

// RegisterControllers is last-write-wins per key so a caller can replace a
// stock controller with a customized one.
func (a *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		if _, ok := a.controllers[c.Key()]; !ok {
			a.order = append(a.order, c.Key())
		}
		a.controllers[c.Key()] = c
	}
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}
