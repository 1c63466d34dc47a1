package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/domain/entities/plan"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/eventbus"
)

// PlanService manages plan catalogs and workspace plan assignment. Every
// write that can change entitlement answers invalidates the affected
// workspaces' cache entries before returning.
type PlanService struct {
	repo       plan.Repository
	workspaces workspace.Repository
	roles      *access.RoleResolver
	store      entitlement.Store
	publisher  eventbus.EventBus
}

func NewPlanService(
	repo plan.Repository,
	workspaces workspace.Repository,
	roles *access.RoleResolver,
	store entitlement.Store,
	publisher eventbus.EventBus,
) *PlanService {
	return &PlanService{
		repo:       repo,
		workspaces: workspaces,
		roles:      roles,
		store:      store,
		publisher:  publisher,
	}
}

func (s *PlanService) GetAll(ctx context.Context) ([]*plan.Plan, error) {
	return s.repo.GetAll(ctx)
}

func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PlanService) GetByKey(ctx context.Context, key string) (*plan.Plan, error) {
	return s.repo.GetByKey(ctx, key)
}

func (s *PlanService) Create(ctx context.Context, data *plan.Plan) (*plan.Plan, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*plan.Plan, error) {
		return s.repo.Create(txCtx, data)
	})
}

func (s *PlanService) Update(ctx context.Context, data *plan.Plan) (*plan.Plan, error) {
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*plan.Plan, error) {
		return s.repo.Update(txCtx, data)
	})
	if err != nil {
		return nil, err
	}
	if err := s.invalidatePlanWorkspaces(ctx, updated.ID()); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	// Snapshot affected workspaces before the rows disappear.
	ids, err := s.workspaces.GetIDsByPlan(ctx, id)
	if err != nil {
		return err
	}
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}
	for _, workspaceID := range ids {
		s.store.InvalidateCache(ctx, workspaceID)
	}
	return nil
}

// AssignPlan moves the workspace onto the plan. Only the workspace owner
// may change billing tiers.
func (s *PlanService) AssignPlan(ctx context.Context, workspaceID, planID uuid.UUID) (*workspace.Workspace, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateAccess(ctx, workspaceID, actor, access.RoleOwner); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, planID); err != nil {
		return nil, err
	}
	current, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	updatedEvent, err := workspace.NewUpdatedEvent(ctx, current)
	if err != nil {
		return nil, err
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*workspace.Workspace, error) {
		return s.workspaces.Update(txCtx, current.AssignPlan(planID))
	})
	if err != nil {
		return nil, err
	}
	s.store.InvalidateCache(ctx, workspaceID)

	updatedEvent.Result = updated
	s.publisher.Publish(updatedEvent)
	return updated, nil
}

func (s *PlanService) invalidatePlanWorkspaces(ctx context.Context, planID uuid.UUID) error {
	ids, err := s.workspaces.GetIDsByPlan(ctx, planID)
	if err != nil {
		return err
	}
	for _, workspaceID := range ids {
		s.store.InvalidateCache(ctx, workspaceID)
	}
	return nil
}
