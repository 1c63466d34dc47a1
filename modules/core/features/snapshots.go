package features

import (
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
)

// Snapshots are flat so the audit diff stays a field-to-field comparison.

// GoneSnapshot is the post-state of a delete. Diffing the pre-state against
// it yields one change per field with the old value and a nil new value.
func GoneSnapshot[T any](T) map[string]any {
	return map[string]any{}
}

func WorkspaceSnapshot(w *workspace.Workspace) map[string]any {
	return map[string]any{
		"name":    w.Name(),
		"plan_id": w.PlanID().String(),
	}
}

func MemberSnapshot(m *workspace.Member) map[string]any {
	return map[string]any{
		"user_id": m.UserID().String(),
		"role":    string(m.Role()),
	}
}

func ProjectSnapshot(p *project.Project) map[string]any {
	return map[string]any{
		"name":        p.Name(),
		"description": p.Description(),
		"archived":    p.Archived(),
	}
}

func TaskSnapshot(t *task.Task) map[string]any {
	return map[string]any{
		"title":       t.Title(),
		"description": t.Description(),
		"status":      string(t.Status()),
		"assignee_id": t.AssigneeID().String(),
	}
}
