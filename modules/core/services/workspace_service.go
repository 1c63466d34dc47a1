package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/features"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/eventbus"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/outbox"
)

// AuditTable is the outbox table audit entries are enqueued to.
var AuditTable = pgx.Identifier{"audit_outbox"}

type WorkspaceService struct {
	repo      workspace.Repository
	roles     *access.RoleResolver
	store     entitlement.Store
	publisher eventbus.EventBus

	inviteDispatcher *feature.Dispatcher[*workspace.Member, *workspace.Member]
	updateDispatcher *feature.Dispatcher[*workspace.Workspace, *workspace.Workspace]
}

func NewWorkspaceService(
	repo workspace.Repository,
	roles *access.RoleResolver,
	store entitlement.Store,
	auditPublisher outbox.Publisher,
	pool *feature.WorkerPool,
	publisher eventbus.EventBus,
	log *logrus.Entry,
) *WorkspaceService {
	s := &WorkspaceService{
		repo:      repo,
		roles:     roles,
		store:     store,
		publisher: publisher,
	}
	s.inviteDispatcher = feature.NewDispatcher[*workspace.Member, *workspace.Member](
		"workspace.invite_member",
		store,
		pool,
		log,
		features.NewMemberLimitHandler(store, repo),
		features.NewAuditHandler[*workspace.Member, *workspace.Member](
			auditPublisher, AuditTable, "member", "invite", nil, features.MemberSnapshot,
		),
	)
	s.updateDispatcher = feature.NewDispatcher[*workspace.Workspace, *workspace.Workspace](
		"workspace.update",
		store,
		pool,
		log,
		features.NewAuditHandler[*workspace.Workspace, *workspace.Workspace](
			auditPublisher,
			AuditTable,
			"workspace",
			"update",
			func(ctx context.Context, data *workspace.Workspace) (map[string]any, error) {
				current, err := repo.GetByID(ctx, data.ID())
				if err != nil {
					return nil, err
				}
				return features.WorkspaceSnapshot(current), nil
			},
			features.WorkspaceSnapshot,
		),
	)
	return s
}

func (s *WorkspaceService) GetByID(ctx context.Context, id uuid.UUID) (*workspace.Workspace, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateIsMember(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *WorkspaceService) GetAllForUser(ctx context.Context) ([]*workspace.Workspace, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetAllForUser(ctx, actor)
}

// Create persists the workspace and enrolls the creator as its OWNER in the
// same transaction, so a workspace is never observable without an owner.
func (s *WorkspaceService) Create(ctx context.Context, data *workspace.Workspace) (*workspace.Workspace, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	createdEvent, err := workspace.NewCreatedEvent(ctx, data)
	if err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*workspace.Workspace, error) {
		created, err := s.repo.Create(txCtx, data)
		if err != nil {
			return nil, err
		}
		owner := workspace.NewMember(created.ID(), actor, access.RoleOwner)
		if err := s.repo.AddMember(txCtx, owner); err != nil {
			return nil, err
		}
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	createdEvent.Result = created
	s.publisher.Publish(createdEvent)
	return created, nil
}

func (s *WorkspaceService) Update(ctx context.Context, data *workspace.Workspace) (*workspace.Workspace, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateAccess(ctx, data.ID(), actor, access.RoleOwner, access.RoleAdmin); err != nil {
		return nil, err
	}
	updatedEvent, err := workspace.NewUpdatedEvent(ctx, data)
	if err != nil {
		return nil, err
	}
	updated, err := s.updateDispatcher.Execute(ctx, data.ID(), actor, data,
		func(opCtx context.Context, req *workspace.Workspace) (*workspace.Workspace, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*workspace.Workspace, error) {
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

func (s *WorkspaceService) Delete(ctx context.Context, id uuid.UUID) error {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	if err := s.roles.ValidateAccess(ctx, id, actor, access.RoleOwner); err != nil {
		return err
	}
	deletedEvent, err := workspace.NewDeletedEvent(ctx)
	if err != nil {
		return err
	}
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}
	s.store.InvalidateCache(ctx, id)
	s.publisher.Publish(deletedEvent)
	return nil
}

func (s *WorkspaceService) GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]*workspace.Member, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateIsMember(ctx, workspaceID, actor); err != nil {
		return nil, err
	}
	return s.repo.GetMembers(ctx, workspaceID)
}

// InviteMember adds the user with the given role. OWNER cannot be granted
// here; ownership only moves via TransferOwnership.
func (s *WorkspaceService) InviteMember(ctx context.Context, workspaceID, userID uuid.UUID, role access.WorkspaceRole) (*workspace.Member, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateAccess(ctx, workspaceID, actor, access.RoleOwner, access.RoleAdmin); err != nil {
		return nil, err
	}
	if role == access.RoleOwner {
		return nil, ErrOwnerRole
	}
	invitedEvent, err := workspace.NewMemberInvitedEvent(ctx)
	if err != nil {
		return nil, err
	}

	member := workspace.NewMember(workspaceID, userID, role)
	added, err := s.inviteDispatcher.Execute(ctx, workspaceID, actor, member,
		func(opCtx context.Context, req *workspace.Member) (*workspace.Member, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*workspace.Member, error) {
				if err := s.repo.AddMember(txCtx, req); err != nil {
					return nil, err
				}
				return req, nil
			})
		},
	)
	if err != nil {
		return nil, err
	}
	invitedEvent.Result = added
	s.publisher.Publish(invitedEvent)
	return added, nil
}

func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role access.WorkspaceRole) (*workspace.Member, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.roles.ValidateAccess(ctx, workspaceID, actor, access.RoleOwner, access.RoleAdmin); err != nil {
		return nil, err
	}
	if role == access.RoleOwner {
		return nil, ErrOwnerRole
	}

	current, err := s.repo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if current.Role() == access.RoleOwner {
		return nil, ErrOwnerRole
	}
	roleEvent, err := workspace.NewMemberRoleUpdatedEvent(ctx, current.Role())
	if err != nil {
		return nil, err
	}

	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.UpdateMemberRole(txCtx, workspaceID, userID, role)
	}); err != nil {
		return nil, err
	}
	roleEvent.Result = current.WithRole(role)
	s.publisher.Publish(roleEvent)
	return roleEvent.Result, nil
}

func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	if err := s.roles.ValidateAccess(ctx, workspaceID, actor, access.RoleOwner, access.RoleAdmin); err != nil {
		return err
	}
	current, err := s.repo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if current.Role() == access.RoleOwner {
		return ErrOwnerRole
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.RemoveMember(txCtx, workspaceID, userID)
	})
}

// TransferOwnership atomically makes newOwnerID the single OWNER and
// demotes the current owner to ADMIN. Only the current owner may call it.
func (s *WorkspaceService) TransferOwnership(ctx context.Context, workspaceID, newOwnerID uuid.UUID) error {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	if err := s.roles.ValidateAccess(ctx, workspaceID, actor, access.RoleOwner); err != nil {
		return err
	}
	if _, err := s.repo.GetMember(ctx, workspaceID, newOwnerID); err != nil {
		return err
	}
	transferEvent, err := workspace.NewOwnershipTransferredEvent(ctx, actor, newOwnerID)
	if err != nil {
		return err
	}
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.TransferOwnership(txCtx, workspaceID, newOwnerID)
	}); err != nil {
		return err
	}
	s.publisher.Publish(transferEvent)
	return nil
}
