// Package features holds the pipeline handlers attached to the core
// module's business operations: plan-limit enforcement and audit logging.
package features

import (
	"context"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/workspace"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/feature"
)

// CountFunc measures current usage for the request being validated.
type CountFunc[Req any] func(ctx context.Context, req Req) (int, error)

// LimitHandler rejects a create when the workspace plan's ceiling is
// already consumed. It only implements Validate: a rejected request must
// leave no trace, and an accepted one needs no post-processing.
type LimitHandler[Req, Res any] struct {
	feature.BaseHandler[Req, Res]
	store     entitlement.Store
	limitType entitlement.LimitType
	count     CountFunc[Req]
}

func NewLimitHandler[Req, Res any](
	f entitlement.Feature,
	limitType entitlement.LimitType,
	store entitlement.Store,
	count CountFunc[Req],
) *LimitHandler[Req, Res] {
	return &LimitHandler[Req, Res]{
		BaseHandler: feature.NewBaseHandler[Req, Res](f),
		store:       store,
		limitType:   limitType,
		count:       count,
	}
}

func (h *LimitHandler[Req, Res]) Validate(ctx context.Context, fctx *feature.Context, req Req) error {
	limit := h.store.GetLimit(ctx, fctx.WorkspaceID, h.limitType)
	if limit == entitlement.Unlimited {
		return nil
	}
	usage, err := h.count(ctx, req)
	if err != nil {
		return err
	}
	if entitlement.WouldExceed(limit, usage) {
		return feature.LimitExceededError(h.limitType, usage, limit)
	}
	return nil
}

func NewProjectLimitHandler(store entitlement.Store, projects project.Repository) *LimitHandler[*project.Project, *project.Project] {
	return NewLimitHandler[*project.Project, *project.Project](
		entitlement.FeatureProjectLimits,
		entitlement.LimitMaxProjects,
		store,
		func(ctx context.Context, req *project.Project) (int, error) {
			return projects.CountByWorkspace(ctx, req.WorkspaceID())
		},
	)
}

func NewMemberLimitHandler(store entitlement.Store, workspaces workspace.Repository) *LimitHandler[*workspace.Member, *workspace.Member] {
	return NewLimitHandler[*workspace.Member, *workspace.Member](
		entitlement.FeatureMemberLimits,
		entitlement.LimitMaxMembers,
		store,
		func(ctx context.Context, req *workspace.Member) (int, error) {
			return workspaces.CountMembers(ctx, req.WorkspaceID())
		},
	)
}

func NewTaskLimitHandler(store entitlement.Store, tasks task.Repository) *LimitHandler[*task.Task, *task.Task] {
	return NewLimitHandler[*task.Task, *task.Task](
		entitlement.FeatureTaskLimits,
		entitlement.LimitMaxTasksPerProject,
		store,
		func(ctx context.Context, req *task.Task) (int, error) {
			return tasks.CountByProject(ctx, req.ProjectID())
		},
	)
}
