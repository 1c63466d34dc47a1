package project

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	id          uuid.UUID
	workspaceID uuid.UUID
	name        string
	description string
	archived    bool
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*Project)

func WithID(id uuid.UUID) Option {
	return func(p *Project) {
		p.id = id
	}
}

func WithDescription(description string) Option {
	return func(p *Project) {
		p.description = description
	}
}

func WithArchived(archived bool) Option {
	return func(p *Project) {
		p.archived = archived
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(p *Project) {
		p.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(p *Project) {
		p.updatedAt = updatedAt
	}
}

func New(workspaceID uuid.UUID, name string, opts ...Option) *Project {
	p := &Project{
		id:          uuid.New(),
		workspaceID: workspaceID,
		name:        name,
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Project) ID() uuid.UUID {
	return p.id
}

func (p *Project) WorkspaceID() uuid.UUID {
	return p.workspaceID
}

func (p *Project) Name() string {
	return p.name
}

func (p *Project) Description() string {
	return p.description
}

func (p *Project) Archived() bool {
	return p.archived
}

func (p *Project) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Project) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *Project) Apply(name, description string) *Project {
	clone := *p
	if name != "" {
		clone.name = name
	}
	if description != "" {
		clone.description = description
	}
	clone.updatedAt = time.Now()
	return &clone
}

func (p *Project) Archive() *Project {
	clone := *p
	clone.archived = true
	clone.updatedAt = time.Now()
	return &clone
}
