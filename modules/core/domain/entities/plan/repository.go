package plan

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	GetByKey(ctx context.Context, key string) (*Plan, error)
	GetAll(ctx context.Context) ([]*Plan, error)
	Create(ctx context.Context, data *Plan) (*Plan, error)
	Update(ctx context.Context, data *Plan) (*Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
