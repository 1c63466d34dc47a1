package access

import (
	"context"

	"github.com/google/uuid"
)

// MembershipReader is the data-access port the resolvers compute from.
// Implementations hold no authorization logic. The two lookups are
// independent reads; no transaction spans both, which is acceptable because
// the computation is read-only and brief staleness between a role change and
// a permission check is tolerated.
type MembershipReader interface {
	// WorkspaceRole returns the user's role in the workspace. The second
	// return value is false when the user holds no role there at all.
	WorkspaceRole(ctx context.Context, workspaceID, userID uuid.UUID) (WorkspaceRole, bool, error)

	// ProjectPermission returns the user's explicit project grant. Absence
	// means "no explicit grant", not "no access".
	ProjectPermission(ctx context.Context, projectID, userID uuid.UUID) (ProjectPermission, bool, error)

	// WorkspaceIDByProject resolves the owning workspace of a project, for
	// callers that cannot supply the workspace id themselves.
	WorkspaceIDByProject(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
}
