package features

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/project"
	"github.com/taskvine/taskvine/pkg/constants"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/outbox"
	"github.com/taskvine/taskvine/pkg/repo"
)

type capturingPublisher struct {
	messages []outbox.Message
}

func (p *capturingPublisher) Enqueue(_ context.Context, _ repo.Tx, _ pgx.Identifier, msg outbox.Message) (int64, error) {
	p.messages = append(p.messages, msg)
	return int64(len(p.messages)), nil
}

type noopTx struct{}

func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func txContext() context.Context {
	return context.WithValue(context.Background(), constants.TxKey, noopTx{})
}

func newAuditFixture(publisher *capturingPublisher, before *project.Project) *AuditHandler[*project.Project, *project.Project] {
	var snapshot BeforeSnapshotFunc[*project.Project]
	if before != nil {
		snapshot = func(context.Context, *project.Project) (map[string]any, error) {
			return ProjectSnapshot(before), nil
		}
	}
	return NewAuditHandler(
		publisher,
		pgx.Identifier{"audit_outbox"},
		"project",
		"update",
		snapshot,
		ProjectSnapshot,
	)
}

func TestAuditHandler_DiffsOnlyChangedFields(t *testing.T) {
	publisher := &capturingPublisher{}
	workspaceID := uuid.New()
	before := project.New(workspaceID, "Alpha", project.WithDescription("first"))
	after := before.Apply("Beta", "")

	h := newAuditFixture(publisher, before)
	fctx := feature.NewContext(workspaceID, uuid.New())
	ctx := txContext()

	require.NoError(t, h.Before(ctx, fctx, before))
	require.NoError(t, h.After(ctx, fctx, before, after))

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, "audit.project.update.v1", msg.Topic)
	assert.Equal(t, workspaceID, msg.WorkspaceID)
	assert.NotEqual(t, uuid.Nil, msg.EventID)

	var entry Entry
	require.NoError(t, json.Unmarshal(msg.Payload, &entry))
	assert.Equal(t, "project", entry.Entity)
	require.Len(t, entry.Changes, 1)
	change, ok := entry.Changes["name"]
	require.True(t, ok)
	assert.Equal(t, "Alpha", change.Old)
	assert.Equal(t, "Beta", change.New)
}

func TestAuditHandler_NoChangesNoEntry(t *testing.T) {
	publisher := &capturingPublisher{}
	workspaceID := uuid.New()
	before := project.New(workspaceID, "Alpha")
	after := before.Apply("Alpha", "")

	h := newAuditFixture(publisher, before)
	fctx := feature.NewContext(workspaceID, uuid.New())
	ctx := txContext()

	require.NoError(t, h.Before(ctx, fctx, before))
	require.NoError(t, h.After(ctx, fctx, before, after))

	assert.Empty(t, publisher.messages)
}

func TestAuditHandler_CreateRecordsAllFields(t *testing.T) {
	publisher := &capturingPublisher{}
	workspaceID := uuid.New()
	created := project.New(workspaceID, "Alpha", project.WithDescription("fresh"))

	h := newAuditFixture(publisher, nil)
	fctx := feature.NewContext(workspaceID, uuid.New())
	ctx := txContext()

	require.NoError(t, h.Before(ctx, fctx, created))
	require.NoError(t, h.After(ctx, fctx, created, created))

	require.Len(t, publisher.messages, 1)
	var entry Entry
	require.NoError(t, json.Unmarshal(publisher.messages[0].Payload, &entry))
	assert.Len(t, entry.Changes, 3)
	assert.Equal(t, "Alpha", entry.Changes["name"].New)
	assert.Nil(t, entry.Changes["name"].Old)
}

func TestDiffSnapshots_AddedAndRemovedFields(t *testing.T) {
	oldState := map[string]any{"status": "OPEN", "assignee_id": "u1"}
	newState := map[string]any{"status": "DONE", "due_at": "tomorrow"}

	changes, err := diffSnapshots(oldState, newState)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, FieldChange{Old: "OPEN", New: "DONE"}, changes["status"])
	assert.Equal(t, FieldChange{Old: "u1", New: nil}, changes["assignee_id"])
	assert.Equal(t, FieldChange{Old: nil, New: "tomorrow"}, changes["due_at"])
}
