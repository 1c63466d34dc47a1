package access

import (
	"context"

	"github.com/google/uuid"
)

// Resolver computes a user's effective permission on a project from the
// workspace role, any explicit project grant, and role-based defaults.
// "No access" is a valid terminal result, never an error: callers translate
// the false return into an authorization-denied response.
type Resolver struct {
	memberships MembershipReader
}

func NewResolver(memberships MembershipReader) *Resolver {
	return &Resolver{memberships: memberships}
}

// EffectivePermission resolves the (project, user, workspace) triple.
// Pass uuid.Nil as workspaceID to have it derived from the project; callers
// that know the workspace should always supply it and skip the extra read.
//
// Resolution order:
//  1. no workspace role at all -> explicit project grant or nothing;
//  2. OWNER -> MANAGER unconditionally, explicit grants ignored;
//  3. explicit project grant -> authoritative, verbatim;
//  4. role default (ADMIN -> MANAGER, MEMBER -> CONTRIBUTOR, GUEST -> none).
func (r *Resolver) EffectivePermission(ctx context.Context, projectID, userID, workspaceID uuid.UUID) (ProjectPermission, bool, error) {
	if workspaceID == uuid.Nil {
		derived, err := r.memberships.WorkspaceIDByProject(ctx, projectID)
		if err != nil {
			return "", false, err
		}
		workspaceID = derived
	}

	role, hasRole, err := r.memberships.WorkspaceRole(ctx, workspaceID, userID)
	if err != nil {
		return "", false, err
	}

	if !hasRole {
		// External collaborators: project members without a workspace role.
		return r.memberships.ProjectPermission(ctx, projectID, userID)
	}

	if role == RoleOwner {
		return PermissionManager, true, nil
	}

	explicit, hasExplicit, err := r.memberships.ProjectPermission(ctx, projectID, userID)
	if err != nil {
		return "", false, err
	}
	if hasExplicit {
		return explicit, true, nil
	}

	fallback, ok := defaultPermission(role)
	return fallback, ok, nil
}

// WorkspaceIDByProject resolves the owning workspace of a project.
func (r *Resolver) WorkspaceIDByProject(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	return r.memberships.WorkspaceIDByProject(ctx, projectID)
}

// HasPermission reports whether the effective permission is one of required.
// An empty required set never matches, and neither does "no access".
func (r *Resolver) HasPermission(ctx context.Context, projectID, userID, workspaceID uuid.UUID, required ...ProjectPermission) (bool, error) {
	effective, ok, err := r.EffectivePermission(ctx, projectID, userID, workspaceID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	for _, p := range required {
		if effective == p {
			return true, nil
		}
	}
	return false, nil
}

func (r *Resolver) CanView(ctx context.Context, projectID, userID, workspaceID uuid.UUID) (bool, error) {
	return r.HasPermission(ctx, projectID, userID, workspaceID, PermissionView, PermissionContributor, PermissionManager)
}

func (r *Resolver) CanContribute(ctx context.Context, projectID, userID, workspaceID uuid.UUID) (bool, error) {
	return r.HasPermission(ctx, projectID, userID, workspaceID, PermissionContributor, PermissionManager)
}

func (r *Resolver) CanManage(ctx context.Context, projectID, userID, workspaceID uuid.UUID) (bool, error) {
	return r.HasPermission(ctx, projectID, userID, workspaceID, PermissionManager)
}
