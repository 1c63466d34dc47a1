package models

import (
	"database/sql"
	"time"
)

type Workspace struct {
	ID        string
	Name      string
	PlanID    sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WorkspaceMember struct {
	WorkspaceID string
	UserID      string
	Role        string
	JoinedAt    time.Time
}

type Project struct {
	ID          string
	WorkspaceID string
	Name        string
	Description sql.NullString
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMembership struct {
	ProjectID  string
	UserID     string
	Permission string
	GrantedAt  time.Time
}

type Task struct {
	ID          string
	ProjectID   string
	WorkspaceID string
	Title       string
	Description sql.NullString
	Status      string
	AssigneeID  sql.NullString
	DueAt       sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Plan struct {
	ID        string
	Key       string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlanFeature struct {
	PlanID  string
	Feature string
	Enabled bool
}

type PlanLimit struct {
	PlanID    string
	LimitType string
	Value     int
}
