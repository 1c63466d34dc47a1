package access

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// RoleResolver answers workspace-level role questions and turns failed
// checks into coded forbidden errors for the boundary to surface.
type RoleResolver struct {
	memberships MembershipReader
}

func NewRoleResolver(memberships MembershipReader) *RoleResolver {
	return &RoleResolver{memberships: memberships}
}

func (r *RoleResolver) GetUserRole(ctx context.Context, workspaceID, userID uuid.UUID) (WorkspaceRole, bool, error) {
	return r.memberships.WorkspaceRole(ctx, workspaceID, userID)
}

// HasRole reports whether the user holds any of the required roles. An empty
// required set degenerates to a bare membership check.
func (r *RoleResolver) HasRole(ctx context.Context, workspaceID, userID uuid.UUID, required ...WorkspaceRole) (bool, error) {
	role, ok, err := r.memberships.WorkspaceRole(ctx, workspaceID, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if len(required) == 0 {
		return true, nil
	}
	for _, req := range required {
		if role == req {
			return true, nil
		}
	}
	return false, nil
}

func (r *RoleResolver) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	return r.HasRole(ctx, workspaceID, userID)
}

// ValidateAccess returns a forbidden error when the user holds none of the
// required roles.
func (r *RoleResolver) ValidateAccess(ctx context.Context, workspaceID, userID uuid.UUID, required ...WorkspaceRole) error {
	ok, err := r.HasRole(ctx, workspaceID, userID, required...)
	if err != nil {
		return err
	}
	if !ok {
		return forbiddenError(workspaceID, userID, rolesLabel(required))
	}
	return nil
}

// ValidateIsMember returns a forbidden error when the user is not a member
// of the workspace at all.
func (r *RoleResolver) ValidateIsMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	ok, err := r.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return forbiddenError(workspaceID, userID, "membership")
	}
	return nil
}

func rolesLabel(roles []WorkspaceRole) string {
	if len(roles) == 0 {
		return "membership"
	}
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, "|")
}
