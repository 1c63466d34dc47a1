package viewmodels

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/domain/entities/plan"
)

type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PlanID    string `json:"plan_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type WorkspaceMember struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	JoinedAt    string `json:"joined_at"`
}

type Project struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Archived    bool   `json:"archived"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ProjectMembership struct {
	ProjectID  string `json:"project_id"`
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
	GrantedAt  string `json:"granted_at"`
}

type Task struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	DueAt       string `json:"due_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type Plan struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Features  map[string]bool `json:"features"`
	Limits    map[string]int  `json:"limits"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func NewWorkspace(w *workspace.Workspace) *Workspace {
	return &Workspace{
		ID:        w.ID().String(),
		Name:      w.Name(),
		PlanID:    optionalID(w.PlanID()),
		CreatedAt: formatTime(w.CreatedAt()),
		UpdatedAt: formatTime(w.UpdatedAt()),
	}
}

func NewWorkspaceMember(m *workspace.Member) *WorkspaceMember {
	return &WorkspaceMember{
		WorkspaceID: m.WorkspaceID().String(),
		UserID:      m.UserID().String(),
		Role:        string(m.Role()),
		JoinedAt:    formatTime(m.JoinedAt()),
	}
}

func NewProject(p *project.Project) *Project {
	return &Project{
		ID:          p.ID().String(),
		WorkspaceID: p.WorkspaceID().String(),
		Name:        p.Name(),
		Description: p.Description(),
		Archived:    p.Archived(),
		CreatedAt:   formatTime(p.CreatedAt()),
		UpdatedAt:   formatTime(p.UpdatedAt()),
	}
}

func NewProjectMembership(m *project.Membership) *ProjectMembership {
	return &ProjectMembership{
		ProjectID:  m.ProjectID().String(),
		UserID:     m.UserID().String(),
		Permission: string(m.Permission()),
		GrantedAt:  formatTime(m.GrantedAt()),
	}
}

func NewTask(t *task.Task) *Task {
	vm := &Task{
		ID:          t.ID().String(),
		ProjectID:   t.ProjectID().String(),
		WorkspaceID: t.WorkspaceID().String(),
		Title:       t.Title(),
		Description: t.Description(),
		Status:      string(t.Status()),
		AssigneeID:  optionalID(t.AssigneeID()),
		CreatedAt:   formatTime(t.CreatedAt()),
		UpdatedAt:   formatTime(t.UpdatedAt()),
	}
	if !t.DueAt().IsZero() {
		vm.DueAt = formatTime(t.DueAt())
	}
	return vm
}

func NewPlan(p *plan.Plan) *Plan {
	features := make(map[string]bool, len(p.Features()))
	for f, enabled := range p.Features() {
		features[string(f)] = enabled
	}
	limits := make(map[string]int, len(p.Limits()))
	for l, value := range p.Limits() {
		limits[string(l)] = value
	}
	return &Plan{
		ID:        p.ID().String(),
		Key:       p.Key(),
		Name:      p.Name(),
		Features:  features,
		Limits:    limits,
		CreatedAt: formatTime(p.CreatedAt()),
		UpdatedAt: formatTime(p.UpdatedAt()),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optionalID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
