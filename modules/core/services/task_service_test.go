package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/modules/core/features"
	"github.com/taskvine/taskvine/pkg/access"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/feature"
)

func TestTaskService_MemberCanCreateByDefault(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	member := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), member, access.RoleMember)
	p := e.seedProject(w.ID())

	created, err := e.taskService.Create(actorContext(member), task.New(p.ID(), w.ID(), "Ship it"))
	require.NoError(t, err)
	assert.Equal(t, task.StatusOpen, created.Status())
}

func TestTaskService_GuestCannotCreate(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	guest := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), guest, access.RoleGuest)
	p := e.seedProject(w.ID())

	_, err := e.taskService.Create(actorContext(guest), task.New(p.ID(), w.ID(), "Ship it"))
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestTaskService_ExplicitViewGrantCannotCreate(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	member := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), member, access.RoleMember)
	p := e.seedProject(w.ID())
	// Explicit VIEW overrides the MEMBER default of CONTRIBUTOR.
	require.NoError(t, e.projects.SetMembership(context.Background(), project.NewMembership(p.ID(), member, access.PermissionView)))

	_, err := e.taskService.Create(actorContext(member), task.New(p.ID(), w.ID(), "Ship it"))
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestTaskService_CreateAtLimitBlocks(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())
	e.store.limits[entitlement.LimitMaxTasksPerProject] = 2
	for i := 0; i < 2; i++ {
		e.tasks.tasks[uuid.New()] = task.New(p.ID(), w.ID(), "existing")
	}

	_, err := e.taskService.Create(actorContext(owner), task.New(p.ID(), w.ID(), "one too many"))
	assert.ErrorIs(t, err, feature.ErrLimitExceeded)
}

func TestTaskService_ArchivedTasksFreeQuota(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())
	e.store.limits[entitlement.LimitMaxTasksPerProject] = 2
	e.tasks.tasks[uuid.New()] = task.New(p.ID(), w.ID(), "active")
	e.tasks.tasks[uuid.New()] = task.New(p.ID(), w.ID(), "done long ago", task.WithStatus(task.StatusArchived))

	_, err := e.taskService.Create(actorContext(owner), task.New(p.ID(), w.ID(), "fits"))
	assert.NoError(t, err)
}

func TestTaskService_ChangeStatus(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())
	created, err := e.taskService.Create(actorContext(owner), task.New(p.ID(), w.ID(), "Ship it"))
	require.NoError(t, err)

	updated, err := e.taskService.ChangeStatus(actorContext(owner), created.ID(), task.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, updated.Status())
}

func TestTaskService_DeleteRequiresManager(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	member := uuid.New()
	w := e.seedWorkspace(owner)
	e.seedMember(w.ID(), member, access.RoleMember)
	p := e.seedProject(w.ID())
	created, err := e.taskService.Create(actorContext(owner), task.New(p.ID(), w.ID(), "Ship it"))
	require.NoError(t, err)

	err = e.taskService.Delete(actorContext(member), created.ID())
	assert.ErrorIs(t, err, access.ErrForbidden)

	require.NoError(t, e.taskService.Delete(actorContext(owner), created.ID()))
}

func TestTaskService_DeleteAuditsPriorState(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	w := e.seedWorkspace(owner)
	p := e.seedProject(w.ID())
	created, err := e.taskService.Create(actorContext(owner), task.New(p.ID(), w.ID(), "Ship it"))
	require.NoError(t, err)
	require.Empty(t, e.audit.messages)
	e.store.enabled[entitlement.FeatureAuditLog] = true

	require.NoError(t, e.taskService.Delete(actorContext(owner), created.ID()))

	require.Len(t, e.audit.messages, 1)
	assert.Equal(t, "audit.task.delete.v1", e.audit.messages[0].Topic)
	var entry features.Entry
	require.NoError(t, json.Unmarshal(e.audit.messages[0].Payload, &entry))
	assert.Equal(t, "delete", entry.Action)
	assert.Equal(t, "Ship it", entry.Changes["title"].Old)
	assert.Nil(t, entry.Changes["title"].New)
}
