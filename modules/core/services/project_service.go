package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/features"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/eventbus"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/outbox"
)

type ProjectService struct {
	repo      project.Repository
	roles     *access.RoleResolver
	resolver  *access.Resolver
	publisher eventbus.EventBus

	createDispatcher *feature.Dispatcher[*project.Project, *project.Project]
	updateDispatcher *feature.Dispatcher[*project.Project, *project.Project]
	deleteDispatcher *feature.Dispatcher[*project.Project, *project.Project]
}

func NewProjectService(
	repo project.Repository,
	roles *access.RoleResolver,
	resolver *access.Resolver,
	store entitlement.Store,
	auditPublisher outbox.Publisher,
	pool *feature.WorkerPool,
	publisher eventbus.EventBus,
	log *logrus.Entry,
) *ProjectService {
	s := &ProjectService{
		repo:      repo,
		roles:     roles,
		resolver:  resolver,
		publisher: publisher,
	}
	s.createDispatcher = feature.NewDispatcher[*project.Project, *project.Project](
		"project.create",
		store,
		pool,
		log,
		features.NewProjectLimitHandler(store, repo),
		features.NewAuditHandler[*project.Project, *project.Project](
			auditPublisher, AuditTable, "project", "create", nil, features.ProjectSnapshot,
		),
	)
	s.updateDispatcher = feature.NewDispatcher[*project.Project, *project.Project](
		"project.update",
		store,
		pool,
		log,
		features.NewAuditHandler[*project.Project, *project.Project](
			auditPublisher,
			AuditTable,
			"project",
			"update",
			func(ctx context.Context, data *project.Project) (map[string]any, error) {
				current, err := repo.GetByID(ctx, data.ID())
				if err != nil {
					return nil, err
				}
				return features.ProjectSnapshot(current), nil
			},
			features.ProjectSnapshot,
		),
	)
	s.deleteDispatcher = feature.NewDispatcher[*project.Project, *project.Project](
		"project.delete",
		store,
		pool,
		log,
		features.NewAuditHandler[*project.Project, *project.Project](
			auditPublisher,
			AuditTable,
			"project",
			"delete",
			func(_ context.Context, data *project.Project) (map[string]any, error) {
				return features.ProjectSnapshot(data), nil
			},
			features.GoneSnapshot[*project.Project],
		),
	)
	return s
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed, err := s.resolver.CanView(ctx, id, actor, data.WorkspaceID())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, access.Forbidden(data.WorkspaceID(), actor, string(access.PermissionView))
	}
	return data, nil
}

func (s *ProjectService) GetAllByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*project.Project, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateIsMember(ctx, workspaceID, actor); err != nil {
		return nil, err
	}
	return s.repo.GetAllByWorkspace(ctx, workspaceID)
}

func (s *ProjectService) Create(ctx context.Context, data *project.Project) (*project.Project, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateAccess(ctx, data.WorkspaceID(), actor, access.RoleOwner, access.RoleAdmin); err != nil {
		return nil, err
	}
	createdEvent, err := project.NewCreatedEvent(ctx, data)
	if err != nil {
		return nil, err
	}
	created, err := s.createDispatcher.Execute(ctx, data.WorkspaceID(), actor, data,
		func(opCtx context.Context, req *project.Project) (*project.Project, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*project.Project, error) {
				created, err := s.repo.Create(txCtx, req)
				if err != nil {
					return nil, err
				}
				// The creator manages the project regardless of later role
				// changes in the workspace.
				grant := project.NewMembership(created.ID(), actor, access.PermissionManager)
				if err := s.repo.SetMembership(txCtx, grant); err != nil {
					return nil, err
				}
				return created, nil
			})
		},
	)
	if err != nil {
		return nil, err
	}
	createdEvent.Result = created
	s.publisher.Publish(createdEvent)
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, data *project.Project) (*project.Project, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, data.ID(), actor, data.WorkspaceID()); err != nil {
		return nil, err
	}
	updatedEvent, err := project.NewUpdatedEvent(ctx, data)
	if err != nil {
		return nil, err
	}
	updated, err := s.updateDispatcher.Execute(ctx, data.WorkspaceID(), actor, data,
		func(opCtx context.Context, req *project.Project) (*project.Project, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*project.Project, error) {
				return s.repo.Update(txCtx, req)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	updatedEvent.Result = updated
	s.publisher.Publish(updatedEvent)
	return updated, nil
}

func (s *ProjectService) Archive(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, data.Archive())
}

func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireManage(ctx, id, actor, data.WorkspaceID()); err != nil {
		return err
	}
	deletedEvent, err := project.NewDeletedEvent(ctx)
	if err != nil {
		return err
	}
	if _, err := s.deleteDispatcher.Execute(ctx, data.WorkspaceID(), actor, data,
		func(opCtx context.Context, req *project.Project) (*project.Project, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*project.Project, error) {
				return req, s.repo.Delete(txCtx, req.ID())
			})
		},
	); err != nil {
		return err
	}
	deletedEvent.Result = data
	s.publisher.Publish(deletedEvent)
	return nil
}

func (s *ProjectService) GetMemberships(ctx context.Context, projectID uuid.UUID) ([]*project.Membership, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.resolver.CanView(ctx, projectID, actor, data.WorkspaceID())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, access.Forbidden(data.WorkspaceID(), actor, string(access.PermissionView))
	}
	return s.repo.GetMemberships(ctx, projectID)
}

// SetMemberPermission upserts an explicit grant. Demoting the project's
// only explicit manager is rejected.
func (s *ProjectService) SetMemberPermission(ctx context.Context, projectID, userID uuid.UUID, permission access.ProjectPermission) (*project.Membership, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, projectID, actor, data.WorkspaceID()); err != nil {
		return nil, err
	}

	if permission != access.PermissionManager {
		if err := s.guardLastManager(ctx, projectID, userID); err != nil {
			return nil, err
		}
	}

	var previous access.ProjectPermission
	if current, err := s.repo.GetMembership(ctx, projectID, userID); err == nil {
		previous = current.Permission()
	}
	setEvent, err := project.NewMembershipSetEvent(ctx, previous)
	if err != nil {
		return nil, err
	}

	grant := project.NewMembership(projectID, userID, permission)
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.SetMembership(txCtx, grant)
	}); err != nil {
		return nil, err
	}
	setEvent.Result = grant
	s.publisher.Publish(setEvent)
	return grant, nil
}

// RemoveMemberPermission drops the explicit grant, reverting the user to
// role-based defaults. The last explicit manager cannot be removed.
func (s *ProjectService) RemoveMemberPermission(ctx context.Context, projectID, userID uuid.UUID) error {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	data, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.requireManage(ctx, projectID, actor, data.WorkspaceID()); err != nil {
		return err
	}
	if err := s.guardLastManager(ctx, projectID, userID); err != nil {
		return err
	}
	removedEvent, err := project.NewMembershipRemovedEvent(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.RemoveMembership(txCtx, projectID, userID)
	}); err != nil {
		return err
	}
	s.publisher.Publish(removedEvent)
	return nil
}

func (s *ProjectService) requireManage(ctx context.Context, projectID, actor, workspaceID uuid.UUID) error {
	allowed, err := s.resolver.CanManage(ctx, projectID, actor, workspaceID)
	if err != nil {
		return err
	}
	if !allowed {
		return access.Forbidden(workspaceID, actor, string(access.PermissionManager))
	}
	return nil
}

// guardLastManager rejects the change when the target is currently the only
// explicit manager of the project.
func (s *ProjectService) guardLastManager(ctx context.Context, projectID, userID uuid.UUID) error {
	current, err := s.repo.GetMembership(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrMembershipNotFound) {
			// No explicit grant to lose.
			return nil
		}
		return err
	}
	if current.Permission() != access.PermissionManager {
		return nil
	}
	managers, err := s.repo.CountManagers(ctx, projectID)
	if err != nil {
		return err
	}
	if managers <= 1 {
		return ErrLastManager
	}
	return nil
}
