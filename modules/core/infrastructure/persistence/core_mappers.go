package persistence

import (
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/modules/core/domain/entities/plan"
	"github.com/taskvine/taskvine/modules/core/infrastructure/persistence/models"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/entitlement"
)

func toDomainWorkspace(m *models.Workspace) (*workspace.Workspace, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid workspace id")
	}
	opts := []workspace.Option{
		workspace.WithID(id),
		workspace.WithCreatedAt(m.CreatedAt),
		workspace.WithUpdatedAt(m.UpdatedAt),
	}
	if m.PlanID.Valid {
		planID, err := uuid.Parse(m.PlanID.String)
		if err != nil {
			return nil, errors.Wrap(err, "invalid workspace plan id")
		}
		opts = append(opts, workspace.WithPlanID(planID))
	}
	return workspace.New(m.Name, opts...), nil
}

func toDBWorkspace(w *workspace.Workspace) *models.Workspace {
	var planID sql.NullString
	if w.PlanID() != uuid.Nil {
		planID = sql.NullString{String: w.PlanID().String(), Valid: true}
	}
	return &models.Workspace{
		ID:        w.ID().String(),
		Name:      w.Name(),
		PlanID:    planID,
		CreatedAt: w.CreatedAt(),
		UpdatedAt: w.UpdatedAt(),
	}
}

func toDomainMember(m *models.WorkspaceMember) (*workspace.Member, error) {
	workspaceID, err := uuid.Parse(m.WorkspaceID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid member workspace id")
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid member user id")
	}
	role, err := access.NewWorkspaceRole(m.Role)
	if err != nil {
		return nil, err
	}
	return workspace.NewMember(workspaceID, userID, role, workspace.MemberWithJoinedAt(m.JoinedAt)), nil
}

func toDomainProject(m *models.Project) (*project.Project, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid project id")
	}
	workspaceID, err := uuid.Parse(m.WorkspaceID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid project workspace id")
	}
	opts := []project.Option{
		project.WithID(id),
		project.WithArchived(m.Archived),
		project.WithCreatedAt(m.CreatedAt),
		project.WithUpdatedAt(m.UpdatedAt),
	}
	if m.Description.Valid {
		opts = append(opts, project.WithDescription(m.Description.String))
	}
	return project.New(workspaceID, m.Name, opts...), nil
}

func toDBProject(p *project.Project) *models.Project {
	var description sql.NullString
	if p.Description() != "" {
		description = sql.NullString{String: p.Description(), Valid: true}
	}
	return &models.Project{
		ID:          p.ID().String(),
		WorkspaceID: p.WorkspaceID().String(),
		Name:        p.Name(),
		Description: description,
		Archived:    p.Archived(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func toDomainMembership(m *models.ProjectMembership) (*project.Membership, error) {
	projectID, err := uuid.Parse(m.ProjectID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid membership project id")
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid membership user id")
	}
	permission, err := access.NewProjectPermission(m.Permission)
	if err != nil {
		return nil, err
	}
	return project.NewMembership(projectID, userID, permission, project.MembershipWithGrantedAt(m.GrantedAt)), nil
}

func toDomainTask(m *models.Task) (*task.Task, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid task id")
	}
	projectID, err := uuid.Parse(m.ProjectID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid task project id")
	}
	workspaceID, err := uuid.Parse(m.WorkspaceID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid task workspace id")
	}
	status, err := task.NewStatus(m.Status)
	if err != nil {
		return nil, err
	}
	opts := []task.Option{
		task.WithID(id),
		task.WithStatus(status),
		task.WithCreatedAt(m.CreatedAt),
		task.WithUpdatedAt(m.UpdatedAt),
	}
	if m.Description.Valid {
		opts = append(opts, task.WithDescription(m.Description.String))
	}
	if m.AssigneeID.Valid {
		assigneeID, err := uuid.Parse(m.AssigneeID.String)
		if err != nil {
			return nil, errors.Wrap(err, "invalid task assignee id")
		}
		opts = append(opts, task.WithAssigneeID(assigneeID))
	}
	if m.DueAt.Valid {
		opts = append(opts, task.WithDueAt(m.DueAt.Time))
	}
	return task.New(projectID, workspaceID, m.Title, opts...), nil
}

func toDBTask(t *task.Task) *models.Task {
	var description sql.NullString
	if t.Description() != "" {
		description = sql.NullString{String: t.Description(), Valid: true}
	}
	var assigneeID sql.NullString
	if t.AssigneeID() != uuid.Nil {
		assigneeID = sql.NullString{String: t.AssigneeID().String(), Valid: true}
	}
	var dueAt sql.NullTime
	if !t.DueAt().IsZero() {
		dueAt = sql.NullTime{Time: t.DueAt(), Valid: true}
	}
	return &models.Task{
		ID:          t.ID().String(),
		ProjectID:   t.ProjectID().String(),
		WorkspaceID: t.WorkspaceID().String(),
		Title:       t.Title(),
		Description: description,
		Status:      string(t.Status()),
		AssigneeID:  assigneeID,
		DueAt:       dueAt,
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
}

func toDomainPlan(m *models.Plan, features []*models.PlanFeature, limits []*models.PlanLimit) (*plan.Plan, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid plan id")
	}
	opts := []plan.Option{
		plan.WithID(id),
		plan.WithCreatedAt(m.CreatedAt),
		plan.WithUpdatedAt(m.UpdatedAt),
	}
	for _, f := range features {
		opts = append(opts, plan.WithFeature(entitlement.Feature(f.Feature), f.Enabled))
	}
	for _, l := range limits {
		opts = append(opts, plan.WithLimit(entitlement.LimitType(l.LimitType), l.Value))
	}
	return plan.New(m.Key, m.Name, opts...), nil
}
