package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/modules/core/domain/entities/plan"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence"
	"github.com/taskvine/taskvine/modules/core/services"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/eventbus"
)

type memPlanRepo struct {
	plans map[uuid.UUID]*plan.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: map[uuid.UUID]*plan.Plan{}}
}

func (r *memPlanRepo) GetByID(_ context.Context, id uuid.UUID) (*plan.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, persistence.ErrPlanNotFound
	}
	return p, nil
}

func (r *memPlanRepo) GetByKey(_ context.Context, key string) (*plan.Plan, error) {
	for _, p := range r.plans {
		if p.Key() == key {
			return p, nil
		}
	}
	return nil, persistence.ErrPlanNotFound
}

func (r *memPlanRepo) GetAll(_ context.Context) ([]*plan.Plan, error) {
	out := make([]*plan.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPlanRepo) Create(_ context.Context, data *plan.Plan) (*plan.Plan, error) {
	r.plans[data.ID()] = data
	return data, nil
}

func (r *memPlanRepo) Update(_ context.Context, data *plan.Plan) (*plan.Plan, error) {
	if _, ok := r.plans[data.ID()]; !ok {
		return nil, persistence.ErrPlanNotFound
	}
	r.plans[data.ID()] = data
	return data, nil
}

func (r *memPlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.plans, id)
	return nil
}

type planEnv struct {
	*env
	plans       *memPlanRepo
	planService *services.PlanService
}

func newPlanEnv() *planEnv {
	e := newEnv()
	plans := newMemPlanRepo()
	memberships := &memMemberships{workspaces: e.workspaces, projects: e.projects}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &planEnv{
		env:   e,
		plans: plans,
		planService: services.NewPlanService(
			plans,
			e.workspaces,
			access.NewRoleResolver(memberships),
			e.store,
			eventbus.NewEventPublisher(logger),
		),
	}
}

func TestPlanService_AssignPlanInvalidatesCache(t *testing.T) {
	e := newPlanEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	pro, err := e.plans.Create(context.Background(), plan.New("pro", "Pro"))
	require.NoError(t, err)

	updated, err := e.planService.AssignPlan(actorContext(owner), w.ID(), pro.ID())
	require.NoError(t, err)
	assert.Equal(t, pro.ID(), updated.PlanID())
	assert.Contains(t, e.store.invalidated, w.ID())
}

func TestPlanService_AssignPlanRequiresOwner(t *testing.T) {
	e := newPlanEnv()
	owner := uuid.New()
	admin := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), admin, access.RoleAdmin)
	pro, err := e.plans.Create(context.Background(), plan.New("pro", "Pro"))
	require.NoError(t, err)

	_, err = e.planService.AssignPlan(actorContext(admin), w.ID(), pro.ID())
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Empty(t, e.store.invalidated)
}

func TestPlanService_UpdateInvalidatesAllWorkspacesOnPlan(t *testing.T) {
	e := newPlanEnv()
	first := uuid.New()
	second := uuid.New()
	w1 := e.seedWorkspace(first)
	w2 := e.seedWorkspace(second)
	free, err := e.plans.Create(context.Background(), plan.New("free", "Free",
		plan.WithLimit(entitlement.LimitMaxProjects, 1),
	))
	require.NoError(t, err)
	e.workspaces.workspaces[w1.ID()] = w1.AssignPlan(free.ID())
	e.workspaces.workspaces[w2.ID()] = w2.AssignPlan(free.ID())

	_, err = e.planService.Update(actorContext(first), free.SetLimit(entitlement.LimitMaxProjects, 5))
	require.NoError(t, err)

	assert.Contains(t, e.store.invalidated, w1.ID())
	assert.Contains(t, e.store.invalidated, w2.ID())
}

func TestPlanService_DeleteInvalidatesFormerWorkspaces(t *testing.T) {
	e := newPlanEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	free, err := e.plans.Create(context.Background(), plan.New("free", "Free"))
	require.NoError(t, err)
	e.workspaces.workspaces[w.ID()] = w.AssignPlan(free.ID())

	require.NoError(t, e.planService.Delete(actorContext(owner), free.ID()))
	assert.Contains(t, e.store.invalidated, w.ID())
}
