package task

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	GetAllByProject(ctx context.Context, projectID uuid.UUID) ([]*Task, error)
	Create(ctx context.Context, data *Task) (*Task, error)
	Update(ctx context.Context, data *Task) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByProject counts tasks that are not archived. Archived tasks do
	// not consume plan quota.
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
}
