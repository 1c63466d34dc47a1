package workspace

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	id        uuid.UUID
	name      string
	planID    uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Workspace)

func WithID(id uuid.UUID) Option {
	return func(w *Workspace) {
		w.id = id
	}
}

func WithPlanID(planID uuid.UUID) Option {
	return func(w *Workspace) {
		w.planID = planID
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(w *Workspace) {
		w.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(w *Workspace) {
		w.updatedAt = updatedAt
	}
}

func New(name string, opts ...Option) *Workspace {
	w := &Workspace{
		id:        uuid.New(),
		name:      name,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workspace) ID() uuid.UUID {
	return w.id
}

func (w *Workspace) Name() string {
	return w.name
}

func (w *Workspace) PlanID() uuid.UUID {
	return w.planID
}

func (w *Workspace) CreatedAt() time.Time {
	return w.createdAt
}

func (w *Workspace) UpdatedAt() time.Time {
	return w.updatedAt
}

func (w *Workspace) Rename(name string) *Workspace {
	clone := *w
	clone.name = name
	clone.updatedAt = time.Now()
	return &clone
}

func (w *Workspace) AssignPlan(planID uuid.UUID) *Workspace {
	clone := *w
	clone.planID = planID
	clone.updatedAt = time.Now()
	return &clone
}
