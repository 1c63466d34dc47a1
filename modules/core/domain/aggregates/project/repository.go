package project

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetAllByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*Project, error)
	Create(ctx context.Context, data *Project) (*Project, error)
	Update(ctx context.Context, data *Project) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int, error)

	// SetMembership upserts the explicit grant for (project, user).
	GetMembership(ctx context.Context, projectID, userID uuid.UUID) (*Membership, error)
	GetMemberships(ctx context.Context, projectID uuid.UUID) ([]*Membership, error)
	SetMembership(ctx context.Context, membership *Membership) error
	RemoveMembership(ctx context.Context, projectID, userID uuid.UUID) error

	// CountManagers counts explicit MANAGER grants on the project. Used by
	// the last-manager safeguard before demotions and removals.
	CountManagers(ctx context.Context, projectID uuid.UUID) (int, error)
}
