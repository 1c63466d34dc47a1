package core

import (
	"github.com/redis/go-redis/v9"

	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence"
	"github.com/taskvine/taskvine/modules/core/presentation/controllers"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/application"
	"github.com/taskvine/taskvine/pkg/configuration"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/metrics"
	"github.com/taskvine/taskvine/pkg/outbox"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	logger := conf.Logger()

	store, err := newEntitlementStore(conf)
	if err != nil {
		return err
	}

	memberships := persistence.NewMembershipReader()
	resolver := access.NewResolver(memberships)
	roles := access.NewRoleResolver(memberships)

	workspaceRepo := persistence.NewWorkspaceRepository()
	projectRepo := persistence.NewProjectRepository()
	taskRepo := persistence.NewTaskRepository()
	planRepo := persistence.NewPlanRepository()

	auditPublisher := outbox.NewPublisher()
	workerPool := feature.NewWorkerPool(
		conf.FeatureWorker.Workers,
		conf.FeatureWorker.QueueSize,
		logger.WithField("component", "feature-workers"),
	)
	serviceLog := logger.WithField("component", "services")
	bus := app.EventPublisher()

	workspaceService := services.NewWorkspaceService(workspaceRepo, roles, store, auditPublisher, workerPool, bus, serviceLog)
	projectService := services.NewProjectService(projectRepo, roles, resolver, store, auditPublisher, workerPool, bus, serviceLog)
	taskService := services.NewTaskService(taskRepo, resolver, store, auditPublisher, workerPool, bus, serviceLog)
	planService := services.NewPlanService(planRepo, workspaceRepo, roles, store, bus)

	app.RegisterControllers(
		controllers.NewHealthController(app.DB()),
		controllers.NewWorkspacesController(workspaceService, planService),
		controllers.NewProjectsController(projectService),
		controllers.NewTasksController(taskService),
		controllers.NewPlansController(planService),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}
	return nil
}

func newEntitlementStore(conf *configuration.Configuration) (entitlement.Store, error) {
	plans := persistence.NewPlanReader()
	storeLog := conf.Logger().WithField("component", "entitlements")

	var cache entitlement.Cache
	switch conf.Entitlement.CacheBackend {
	case "redis":
		opts, err := redis.ParseURL(conf.Entitlement.RedisURL)
		if err != nil {
			return nil, err
		}
		cache = entitlement.NewRedisCache(redis.NewClient(opts), conf.Entitlement.CacheTTL, storeLog)
	default:
		cache = entitlement.NewMemoryCache(conf.Entitlement.CacheSize, conf.Entitlement.CacheTTL)
	}
	return entitlement.NewStore(plans, cache, storeLog), nil
}
