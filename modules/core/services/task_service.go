package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/features"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/eventbus"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/outbox"
)

type TaskService struct {
	repo      task.Repository
	resolver  *access.Resolver
	publisher eventbus.EventBus

	createDispatcher *feature.Dispatcher[*task.Task, *task.Task]
	updateDispatcher *feature.Dispatcher[*task.Task, *task.Task]
	deleteDispatcher *feature.Dispatcher[*task.Task, *task.Task]
}

func NewTaskService(
	repo task.Repository,
	resolver *access.Resolver,
	store entitlement.Store,
	auditPublisher outbox.Publisher,
	pool *feature.WorkerPool,
	publisher eventbus.EventBus,
	log *logrus.Entry,
) *TaskService {
	s := &TaskService{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
	}
	s.createDispatcher = feature.NewDispatcher[*task.Task, *task.Task](
		"task.create",
		store,
		pool,
		log,
		features.NewTaskLimitHandler(store, repo),
		features.NewAuditHandler[*task.Task, *task.Task](
			auditPublisher, AuditTable, "task", "create", nil, features.TaskSnapshot,
		),
	)
	s.updateDispatcher = feature.NewDispatcher[*task.Task, *task.Task](
		"task.update",
		store,
		pool,
		log,
		features.NewAuditHandler[*task.Task, *task.Task](
			auditPublisher,
			AuditTable,
			"task",
			"update",
			func(ctx context.Context, data *task.Task) (map[string]any, error) {
				current, err := repo.GetByID(ctx, data.ID())
				if err != nil {
					return nil, err
				}
				return features.TaskSnapshot(current), nil
			},
			features.TaskSnapshot,
		),
	)
	s.deleteDispatcher = feature.NewDispatcher[*task.Task, *task.Task](
		"task.delete",
		store,
		pool,
		log,
		features.NewAuditHandler[*task.Task, *task.Task](
			auditPublisher,
			AuditTable,
			"task",
			"delete",
			func(_ context.Context, data *task.Task) (map[string]any, error) {
				return features.TaskSnapshot(data), nil
			},
			features.GoneSnapshot[*task.Task],
		),
	)
	return s
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed, err := s.resolver.CanView(ctx, data.ProjectID(), actor, data.WorkspaceID())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, access.Forbidden(data.WorkspaceID(), actor, string(access.PermissionView))
	}
	return data, nil
}

func (s *TaskService) GetAllByProject(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	allowed, err := s.resolver.CanView(ctx, projectID, actor, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, access.Forbidden(uuid.Nil, actor, string(access.PermissionView))
	}
	return s.repo.GetAllByProject(ctx, projectID)
}

func (s *TaskService) Create(ctx context.Context, data *task.Task) (*task.Task, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	if data.WorkspaceID() == uuid.Nil {
		workspaceID, err := s.resolver.WorkspaceIDByProject(ctx, data.ProjectID())
		if err != nil {
			return nil, err
		}
		data = data.InWorkspace(workspaceID)
	}
	allowed, err := s.resolver.CanContribute(ctx, data.ProjectID(), actor, data.WorkspaceID())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, access.Forbidden(data.WorkspaceID(), actor, string(access.PermissionContributor))
	}
	createdEvent, err := task.NewCreatedEvent(ctx, data)
	if err != nil {
		return nil, err
	}
	created, err := s.createDispatcher.Execute(ctx, data.WorkspaceID(), actor, data,
		func(opCtx context.Context, req *task.Task) (*task.Task, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*task.Task, error) {
				return s.repo.Create(txCtx, req)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	createdEvent.Result = created
	s.publisher.Publish(createdEvent)
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, data *task.Task) (*task.Task, error) {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return nil, err
	}
	allowed, err := s.resolver.CanContribute(ctx, data.ProjectID(), actor, data.WorkspaceID())
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, access.Forbidden(data.WorkspaceID(), actor, string(access.PermissionContributor))
	}
	updatedEvent, err := task.NewUpdatedEvent(ctx, data)
	if err != nil {
		return nil, err
	}
	updated, err := s.updateDispatcher.Execute(ctx, data.WorkspaceID(), actor, data,
		func(opCtx context.Context, req *task.Task) (*task.Task, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*task.Task, error) {
				return s.repo.Update(txCtx, req)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	updatedEvent.Result = updated
	s.publisher.Publish(updatedEvent)
	return updated, nil
}

func (s *TaskService) ChangeStatus(ctx context.Context, id uuid.UUID, status task.Status) (*task.Task, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := data.Status()
	updated, err := s.Update(ctx, data.Transition(status))
	if err != nil {
		return nil, err
	}
	statusEvent, err := task.NewStatusChangedEvent(ctx, previous)
	if err != nil {
		return nil, err
	}
	statusEvent.Result = updated
	s.publisher.Publish(statusEvent)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	actor, err := composables.UseUserID(ctx)
	if err != nil {
		return err
	}
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	allowed, err := s.resolver.CanManage(ctx, data.ProjectID(), actor, data.WorkspaceID())
	if err != nil {
		return err
	}
	if !allowed {
		return access.Forbidden(data.WorkspaceID(), actor, string(access.PermissionManager))
	}
	deletedEvent, err := task.NewDeletedEvent(ctx)
	if err != nil {
		return err
	}
	if _, err := s.deleteDispatcher.Execute(ctx, data.WorkspaceID(), actor, data,
		func(opCtx context.Context, req *task.Task) (*task.Task, error) {
			return composables.InTxResult(opCtx, func(txCtx context.Context) (*task.Task, error) {
				return req, s.repo.Delete(txCtx, req.ID())
			})
		},
	); err != nil {
		return err
	}
	deletedEvent.Result = data
	s.publisher.Publish(deletedEvent)
	return nil
}
