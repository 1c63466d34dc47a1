package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence/models"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
)

var (
	ErrWorkspaceNotFound = fmt.Errorf("workspace not found")
	ErrMemberNotFound    = fmt.Errorf("workspace member not found")
	ErrNoOwner           = fmt.Errorf("workspace has no owner")
)

const (
	workspaceFindQuery = `SELECT id, name, plan_id, created_at, updated_at FROM workspaces`
	memberFindQuery    = `SELECT workspace_id, user_id, role, joined_at FROM workspace_members`

	workspaceInsertQuery = `
		INSERT INTO workspaces (id, name, plan_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	workspaceUpdateQuery = `
		UPDATE workspaces
		SET name = $1, plan_id = $2, updated_at = $3
		WHERE id = $4`

	workspaceDeleteQuery = `DELETE FROM workspaces WHERE id = $1`

	memberInsertQuery = `
		INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)`

	memberUpdateRoleQuery = `
		UPDATE workspace_members
		SET role = $1
		WHERE workspace_id = $2 AND user_id = $3`

	memberDeleteQuery = `
		DELETE FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2`

	memberCountQuery = `SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1`
)

type WorkspaceRepository struct{}

func NewWorkspaceRepository() workspace.Repository {
	return &WorkspaceRepository{}
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*workspace.Workspace, error) {
	workspaces, err := r.queryWorkspaces(ctx, workspaceFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(workspaces) == 0 {
		return nil, ErrWorkspaceNotFound
	}
	return workspaces[0], nil
}

func (r *WorkspaceRepository) GetAllForUser(ctx context.Context, userID uuid.UUID) ([]*workspace.Workspace, error) {
	query := workspaceFindQuery + `
		WHERE id IN (SELECT workspace_id FROM workspace_members WHERE user_id = $1)
		ORDER BY created_at`
	return r.queryWorkspaces(ctx, query, userID.String())
}

func (r *WorkspaceRepository) GetIDsByPlan(ctx context.Context, planID uuid.UUID) ([]uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT id FROM workspaces WHERE plan_id = $1`, planID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query workspaces by plan")
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "failed to scan workspace id")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid workspace id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *WorkspaceRepository) Create(ctx context.Context, data *workspace.Workspace) (*workspace.Workspace, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m := toDBWorkspace(data)
	if _, err := tx.Exec(ctx, workspaceInsertQuery, m.ID, m.Name, m.PlanID, m.CreatedAt, m.UpdatedAt); err != nil {
		return nil, errors.Wrap(err, "failed to insert workspace")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *WorkspaceRepository) Update(ctx context.Context, data *workspace.Workspace) (*workspace.Workspace, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m := toDBWorkspace(data)
	if _, err := tx.Exec(ctx, workspaceUpdateQuery, m.Name, m.PlanID, m.UpdatedAt, m.ID); err != nil {
		return nil, errors.Wrap(err, "failed to update workspace")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, workspaceDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete workspace")
	}
	return nil
}

func (r *WorkspaceRepository) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	members, err := r.queryMembers(ctx, memberFindQuery+" WHERE workspace_id = $1 AND user_id = $2", workspaceID.String(), userID.String())
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrMemberNotFound
	}
	return members[0], nil
}

func (r *WorkspaceRepository) GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]*workspace.Member, error) {
	return r.queryMembers(ctx, memberFindQuery+" WHERE workspace_id = $1 ORDER BY joined_at", workspaceID.String())
}

func (r *WorkspaceRepository) AddMember(ctx context.Context, member *workspace.Member) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx,
		memberInsertQuery,
		member.WorkspaceID().String(),
		member.UserID().String(),
		string(member.Role()),
		member.JoinedAt(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert workspace member")
	}
	return nil
}

func (r *WorkspaceRepository) UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role access.WorkspaceRole) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, memberUpdateRoleQuery, string(role), workspaceID.String(), userID.String())
	if err != nil {
		return errors.Wrap(err, "failed to update member role")
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *WorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, memberDeleteQuery, workspaceID.String(), userID.String())
	if err != nil {
		return errors.Wrap(err, "failed to remove workspace member")
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *WorkspaceRepository) CountMembers(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if err := tx.QueryRow(ctx, memberCountQuery, workspaceID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count workspace members")
	}
	return count, nil
}

func (r *WorkspaceRepository) GetOwner(ctx context.Context, workspaceID uuid.UUID) (*workspace.Member, error) {
	members, err := r.queryMembers(
		ctx,
		memberFindQuery+" WHERE workspace_id = $1 AND role = $2",
		workspaceID.String(),
		string(access.RoleOwner),
	)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrNoOwner
	}
	return members[0], nil
}

// TransferOwnership runs both role updates on the caller's transaction so
// the workspace never observes zero or two owners.
func (r *WorkspaceRepository) TransferOwnership(ctx context.Context, workspaceID, newOwnerID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	owner, err := r.GetOwner(ctx, workspaceID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, memberUpdateRoleQuery, string(access.RoleAdmin), workspaceID.String(), owner.UserID().String()); err != nil {
		return errors.Wrap(err, "failed to demote previous owner")
	}
	tag, err := tx.Exec(ctx, memberUpdateRoleQuery, string(access.RoleOwner), workspaceID.String(), newOwnerID.String())
	if err != nil {
		return errors.Wrap(err, "failed to promote new owner")
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *WorkspaceRepository) queryWorkspaces(ctx context.Context, query string, args ...interface{}) ([]*workspace.Workspace, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query workspaces")
	}
	defer rows.Close()

	workspaces := make([]*workspace.Workspace, 0)
	for rows.Next() {
		var m models.Workspace
		if err := rows.Scan(&m.ID, &m.Name, &m.PlanID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan workspace")
		}
		entity, err := toDomainWorkspace(&m)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, entity)
	}
	return workspaces, rows.Err()
}

func (r *WorkspaceRepository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]*workspace.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query workspace members")
	}
	defer rows.Close()

	members := make([]*workspace.Member, 0)
	for rows.Next() {
		var m models.WorkspaceMember
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan workspace member")
		}
		member, err := toDomainMember(&m)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
