package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
)

const (
	roleLookupQuery = `
		SELECT role FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2`

	permissionLookupQuery = `
		SELECT permission FROM project_memberships
		WHERE project_id = $1 AND user_id = $2`

	projectWorkspaceQuery = `SELECT workspace_id FROM projects WHERE id = $1`
)

// PgMembershipReader backs the permission resolvers with direct row
// lookups. Row absence is a resolver input, never an error.
type PgMembershipReader struct{}

func NewMembershipReader() access.MembershipReader {
	return &PgMembershipReader{}
}

func (r *PgMembershipReader) WorkspaceRole(ctx context.Context, workspaceID, userID uuid.UUID) (access.WorkspaceRole, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", false, err
	}
	var raw string
	if err := tx.QueryRow(ctx, roleLookupQuery, workspaceID.String(), userID.String()).Scan(&raw); err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to look up workspace role")
	}
	role, err := access.NewWorkspaceRole(raw)
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

func (r *PgMembershipReader) ProjectPermission(ctx context.Context, projectID, userID uuid.UUID) (access.ProjectPermission, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", false, err
	}
	var raw string
	if err := tx.QueryRow(ctx, permissionLookupQuery, projectID.String(), userID.String()).Scan(&raw); err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to look up project permission")
	}
	permission, err := access.NewProjectPermission(raw)
	if err != nil {
		return "", false, err
	}
	return permission, true, nil
}

func (r *PgMembershipReader) WorkspaceIDByProject(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	var raw string
	if err := tx.QueryRow(ctx, projectWorkspaceQuery, projectID.String()).Scan(&raw); err != nil {
		if isNoRows(err) {
			return uuid.Nil, ErrProjectNotFound
		}
		return uuid.Nil, errors.Wrap(err, "failed to resolve project workspace")
	}
	return uuid.Parse(raw)
}
