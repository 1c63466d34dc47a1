package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence/models"
	"github.com/taskvine/taskvine/pkg/composables"
)

var ErrTaskNotFound = fmt.Errorf("task not found")

const (
	taskFindQuery = `
		SELECT id, project_id, workspace_id, title, description, status, assignee_id, due_at, created_at, updated_at
		FROM tasks`

	taskInsertQuery = `
		INSERT INTO tasks (id, project_id, workspace_id, title, description, status, assignee_id, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	taskUpdateQuery = `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, assignee_id = $4, due_at = $5, updated_at = $6
		WHERE id = $7`

	taskDeleteQuery = `DELETE FROM tasks WHERE id = $1`

	taskCountQuery = `SELECT COUNT(*) FROM tasks WHERE project_id = $1 AND status <> $2`
)

type TaskRepository struct{}

func NewTaskRepository() task.Repository {
	return &TaskRepository{}
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	tasks, err := r.queryTasks(ctx, taskFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrTaskNotFound
	}
	return tasks[0], nil
}

func (r *TaskRepository) GetAllByProject(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	return r.queryTasks(ctx, taskFindQuery+" WHERE project_id = $1 ORDER BY created_at", projectID.String())
}

func (r *TaskRepository) Create(ctx context.Context, data *task.Task) (*task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m := toDBTask(data)
	_, err = tx.Exec(
		ctx,
		taskInsertQuery,
		m.ID,
		m.ProjectID,
		m.WorkspaceID,
		m.Title,
		m.Description,
		m.Status,
		m.AssigneeID,
		m.DueAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert task")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *TaskRepository) Update(ctx context.Context, data *task.Task) (*task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m := toDBTask(data)
	_, err = tx.Exec(
		ctx,
		taskUpdateQuery,
		m.Title,
		m.Description,
		m.Status,
		m.AssigneeID,
		m.DueAt,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update task")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, taskDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete task")
	}
	return nil
}

func (r *TaskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if err := tx.QueryRow(ctx, taskCountQuery, projectID.String(), string(task.StatusArchived)).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count tasks")
	}
	return count, nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tasks")
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		var m models.Task
		if err := rows.Scan(
			&m.ID,
			&m.ProjectID,
			&m.WorkspaceID,
			&m.Title,
			&m.Description,
			&m.Status,
			&m.AssigneeID,
			&m.DueAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan task")
		}
		entity, err := toDomainTask(&m)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, entity)
	}
	return tasks, rows.Err()
}
