package workspace

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/access"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	GetAllForUser(ctx context.Context, userID uuid.UUID) ([]*Workspace, error)
	GetIDsByPlan(ctx context.Context, planID uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, data *Workspace) (*Workspace, error)
	Update(ctx context.Context, data *Workspace) (*Workspace, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*Member, error)
	GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]*Member, error)
	AddMember(ctx context.Context, member *Member) error
	UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role access.WorkspaceRole) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	CountMembers(ctx context.Context, workspaceID uuid.UUID) (int, error)

	// GetOwner returns the single OWNER member of the workspace.
	GetOwner(ctx context.Context, workspaceID uuid.UUID) (*Member, error)

	// TransferOwnership atomically demotes the current owner to ADMIN and
	// promotes newOwner to OWNER, preserving the single-owner invariant.
	TransferOwnership(ctx context.Context, workspaceID, newOwnerID uuid.UUID) error
}
