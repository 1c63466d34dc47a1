package task_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
)

func TestNewStatus(t *testing.T) {
	status, err := task.NewStatus("IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, status)

	_, err = task.NewStatus("PAUSED")
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	projectID := uuid.New()
	workspaceID := uuid.New()

	entity := task.New(projectID, workspaceID, "Ship it")

	assert.NotEqual(t, uuid.Nil, entity.ID())
	assert.Equal(t, projectID, entity.ProjectID())
	assert.Equal(t, workspaceID, entity.WorkspaceID())
	assert.Equal(t, task.StatusOpen, entity.Status())
	assert.False(t, entity.CreatedAt().IsZero())
}

func TestApply_DoesNotMutateOriginal(t *testing.T) {
	entity := task.New(uuid.New(), uuid.New(), "Ship it", task.WithDescription("initial"))

	updated := entity.Apply("Ship it faster", "")

	assert.Equal(t, "Ship it", entity.Title())
	assert.Equal(t, "Ship it faster", updated.Title())
	assert.Equal(t, "initial", updated.Description())
}

func TestTransition(t *testing.T) {
	entity := task.New(uuid.New(), uuid.New(), "Ship it")

	done := entity.Transition(task.StatusDone)

	assert.Equal(t, task.StatusOpen, entity.Status())
	assert.Equal(t, task.StatusDone, done.Status())
}

func TestInWorkspace(t *testing.T) {
	entity := task.New(uuid.New(), uuid.Nil, "Ship it")
	workspaceID := uuid.New()

	pinned := entity.InWorkspace(workspaceID)

	assert.Equal(t, uuid.Nil, entity.WorkspaceID())
	assert.Equal(t, workspaceID, pinned.WorkspaceID())
}
