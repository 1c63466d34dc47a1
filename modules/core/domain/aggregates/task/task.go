package task

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusArchived   Status = "ARCHIVED"
)

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", errInvalidStatus(s)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

type Task struct {
	id          uuid.UUID
	projectID   uuid.UUID
	workspaceID uuid.UUID
	title       string
	description string
	status      Status
	assigneeID  uuid.UUID
	dueAt       time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*Task)

func WithID(id uuid.UUID) Option {
	return func(t *Task) {
		t.id = id
	}
}

func WithDescription(description string) Option {
	return func(t *Task) {
		t.description = description
	}
}

func WithStatus(status Status) Option {
	return func(t *Task) {
		t.status = status
	}
}

func WithAssigneeID(assigneeID uuid.UUID) Option {
	return func(t *Task) {
		t.assigneeID = assigneeID
	}
}

func WithDueAt(dueAt time.Time) Option {
	return func(t *Task) {
		t.dueAt = dueAt
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *Task) {
		t.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *Task) {
		t.updatedAt = updatedAt
	}
}

func New(projectID, workspaceID uuid.UUID, title string, opts ...Option) *Task {
	t := &Task{
		id:          uuid.New(),
		projectID:   projectID,
		workspaceID: workspaceID,
		title:       title,
		status:      StatusOpen,
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Task) ID() uuid.UUID {
	return t.id
}

func (t *Task) ProjectID() uuid.UUID {
	return t.projectID
}

func (t *Task) WorkspaceID() uuid.UUID {
	return t.workspaceID
}

func (t *Task) Title() string {
	return t.title
}

func (t *Task) Description() string {
	return t.description
}

func (t *Task) Status() Status {
	return t.status
}

func (t *Task) AssigneeID() uuid.UUID {
	return t.assigneeID
}

func (t *Task) DueAt() time.Time {
	return t.dueAt
}

func (t *Task) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Task) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Task) Apply(title, description string) *Task {
	clone := *t
	if title != "" {
		clone.title = title
	}
	if description != "" {
		clone.description = description
	}
	clone.updatedAt = time.Now()
	return &clone
}

func (t *Task) Transition(status Status) *Task {
	clone := *t
	clone.status = status
	clone.updatedAt = time.Now()
	return &clone
}

// InWorkspace pins the owning workspace on a task built from a request that
// only carried the project id.
func (t *Task) InWorkspace(workspaceID uuid.UUID) *Task {
	clone := *t
	clone.workspaceID = workspaceID
	return &clone
}

func (t *Task) Assign(assigneeID uuid.UUID) *Task {
	clone := *t
	clone.assigneeID = assigneeID
	clone.updatedAt = time.Now()
	return &clone
}
