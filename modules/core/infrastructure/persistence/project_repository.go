package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence/models"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
)

var (
	ErrProjectNotFound    = fmt.Errorf("project not found")
	ErrMembershipNotFound = fmt.Errorf("project membership not found")
)

const (
	projectFindQuery    = `SELECT id, workspace_id, name, description, archived, created_at, updated_at FROM projects`
	membershipFindQuery = `SELECT project_id, user_id, permission, granted_at FROM project_memberships`

	projectInsertQuery = `
		INSERT INTO projects (id, workspace_id, name, description, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	projectUpdateQuery = `
		UPDATE projects
		SET name = $1, description = $2, archived = $3, updated_at = $4
		WHERE id = $5`

	projectDeleteQuery = `DELETE FROM projects WHERE id = $1`

	projectCountQuery = `SELECT COUNT(*) FROM projects WHERE workspace_id = $1 AND archived = FALSE`

	membershipUpsertQuery = `
		INSERT INTO project_memberships (project_id, user_id, permission, granted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, user_id) DO UPDATE SET permission = EXCLUDED.permission`

	membershipDeleteQuery = `
		DELETE FROM project_memberships
		WHERE project_id = $1 AND user_id = $2`

	managerCountQuery = `
		SELECT COUNT(*) FROM project_memberships
		WHERE project_id = $1 AND permission = $2`
)

type ProjectRepository struct{}

func NewProjectRepository() project.Repository {
	return &ProjectRepository{}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	projects, err := r.queryProjects(ctx, projectFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrProjectNotFound
	}
	return projects[0], nil
}

func (r *ProjectRepository) GetAllByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*project.Project, error) {
	return r.queryProjects(ctx, projectFindQuery+" WHERE workspace_id = $1 ORDER BY created_at", workspaceID.String())
}

func (r *ProjectRepository) Create(ctx context.Context, data *project.Project) (*project.Project, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m := toDBProject(data)
	_, err = tx.Exec(
		ctx,
		projectInsertQuery,
		m.ID,
		m.WorkspaceID,
		m.Name,
		m.Description,
		m.Archived,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert project")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *ProjectRepository) Update(ctx context.Context, data *project.Project) (*project.Project, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m := toDBProject(data)
	if _, err := tx.Exec(ctx, projectUpdateQuery, m.Name, m.Description, m.Archived, m.UpdatedAt, m.ID); err != nil {
		return nil, errors.Wrap(err, "failed to update project")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, projectDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete project")
	}
	return nil
}

func (r *ProjectRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if err := tx.QueryRow(ctx, projectCountQuery, workspaceID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count projects")
	}
	return count, nil
}

func (r *ProjectRepository) GetMembership(ctx context.Context, projectID, userID uuid.UUID) (*project.Membership, error) {
	memberships, err := r.queryMemberships(ctx, membershipFindQuery+" WHERE project_id = $1 AND user_id = $2", projectID.String(), userID.String())
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, ErrMembershipNotFound
	}
	return memberships[0], nil
}

func (r *ProjectRepository) GetMemberships(ctx context.Context, projectID uuid.UUID) ([]*project.Membership, error) {
	return r.queryMemberships(ctx, membershipFindQuery+" WHERE project_id = $1 ORDER BY granted_at", projectID.String())
}

func (r *ProjectRepository) SetMembership(ctx context.Context, membership *project.Membership) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx,
		membershipUpsertQuery,
		membership.ProjectID().String(),
		membership.UserID().String(),
		string(membership.Permission()),
		membership.GrantedAt(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert project membership")
	}
	return nil
}

func (r *ProjectRepository) RemoveMembership(ctx context.Context, projectID, userID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, membershipDeleteQuery, projectID.String(), userID.String())
	if err != nil {
		return errors.Wrap(err, "failed to remove project membership")
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (r *ProjectRepository) CountManagers(ctx context.Context, projectID uuid.UUID) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if err := tx.QueryRow(ctx, managerCountQuery, projectID.String(), string(access.PermissionManager)).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count project managers")
	}
	return count, nil
}

func (r *ProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*project.Project, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query projects")
	}
	defer rows.Close()

	projects := make([]*project.Project, 0)
	for rows.Next() {
		var m models.Project
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.Name, &m.Description, &m.Archived, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan project")
		}
		entity, err := toDomainProject(&m)
		if err != nil {
			return nil, err
		}
		projects = append(projects, entity)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) queryMemberships(ctx context.Context, query string, args ...interface{}) ([]*project.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query project memberships")
	}
	defer rows.Close()

	memberships := make([]*project.Membership, 0)
	for rows.Next() {
		var m models.ProjectMembership
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Permission, &m.GrantedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan project membership")
		}
		membership, err := toDomainMembership(&m)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	return memberships, rows.Err()
}
