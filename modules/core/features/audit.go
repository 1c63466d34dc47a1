package features

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wI2L/jsondiff"

	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/entitlement"
	"github.com/taskvine/taskvine/pkg/feature"
	"github.com/taskvine/taskvine/pkg/outbox"
)

// FieldChange records one field's transition in an audit entry.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Entry is the audit payload enqueued to the outbox. Changes holds only
// fields whose values actually differ; an operation that changed nothing
// produces no entry at all.
type Entry struct {
	Entity      string                 `json:"entity"`
	Action      string                 `json:"action"`
	WorkspaceID uuid.UUID              `json:"workspace_id"`
	ActorID     uuid.UUID              `json:"actor_id"`
	Changes     map[string]FieldChange `json:"changes"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// SnapshotFunc renders an entity as a flat field map for diffing.
type SnapshotFunc[T any] func(T) map[string]any

// BeforeSnapshotFunc loads the pre-operation state of the entity the
// request targets. Nil for creates, where there is no prior state.
type BeforeSnapshotFunc[Req any] func(ctx context.Context, req Req) (map[string]any, error)

// AuditHandler captures a pre-state snapshot in Before, diffs it against
// the post-state in After and enqueues the entry on the operation's
// transaction via the outbox. It is gated by the audit-log feature, so
// workspaces on plans without it pay nothing.
type AuditHandler[Req, Res any] struct {
	feature.BaseHandler[Req, Res]
	publisher outbox.Publisher
	table     pgx.Identifier
	entity    string
	action    string
	before    BeforeSnapshotFunc[Req]
	after     SnapshotFunc[Res]
}

func NewAuditHandler[Req, Res any](
	publisher outbox.Publisher,
	table pgx.Identifier,
	entity, action string,
	before BeforeSnapshotFunc[Req],
	after SnapshotFunc[Res],
) *AuditHandler[Req, Res] {
	return &AuditHandler[Req, Res]{
		BaseHandler: feature.NewBaseHandler[Req, Res](entitlement.FeatureAuditLog),
		publisher:   publisher,
		table:       table,
		entity:      entity,
		action:      action,
		before:      before,
		after:       after,
	}
}

func (h *AuditHandler[Req, Res]) snapshotKey() string {
	return "audit:" + h.entity + ":" + h.action
}

func (h *AuditHandler[Req, Res]) Before(ctx context.Context, fctx *feature.Context, req Req) error {
	if h.before == nil {
		return nil
	}
	snapshot, err := h.before(ctx, req)
	if err != nil {
		return errors.Wrap(err, "failed to capture audit snapshot")
	}
	fctx.Set(h.snapshotKey(), snapshot)
	return nil
}

func (h *AuditHandler[Req, Res]) After(ctx context.Context, fctx *feature.Context, req Req, res Res) error {
	oldState := map[string]any{}
	if stored, ok := fctx.Get(h.snapshotKey()); ok {
		if snapshot, ok := stored.(map[string]any); ok {
			oldState = snapshot
		}
	}
	newState := h.after(res)

	changes, err := diffSnapshots(oldState, newState)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	entry := Entry{
		Entity:      h.entity,
		Action:      h.action,
		WorkspaceID: fctx.WorkspaceID,
		ActorID:     fctx.ActorID,
		Changes:     changes,
		OccurredAt:  time.Now(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "failed to marshal audit entry")
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = h.publisher.Enqueue(ctx, tx, h.table, outbox.Message{
		WorkspaceID: fctx.WorkspaceID,
		Topic:       "audit." + h.entity + "." + h.action + ".v1",
		EventID:     uuid.New(),
		Payload:     payload,
	})
	if err != nil {
		return errors.Wrap(err, "failed to enqueue audit entry")
	}
	return nil
}

// diffSnapshots uses a JSON patch comparison to detect which top-level
// fields changed, then reads old and new values straight from the
// snapshots. Unchanged fields never appear in the result.
func diffSnapshots(oldState, newState map[string]any) (map[string]FieldChange, error) {
	oldJSON, err := json.Marshal(oldState)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal previous state")
	}
	newJSON, err := json.Marshal(newState)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal current state")
	}

	patch, err := jsondiff.CompareJSON(oldJSON, newJSON)
	if err != nil {
		return nil, errors.Wrap(err, "failed to diff audit snapshots")
	}
	if len(patch) == 0 {
		return nil, nil
	}

	changes := make(map[string]FieldChange)
	for _, op := range patch {
		field := topLevelField(op.Path)
		if field == "" {
			continue
		}
		if _, seen := changes[field]; seen {
			continue
		}
		changes[field] = FieldChange{Old: oldState[field], New: newState[field]}
	}
	return changes, nil
}

func topLevelField(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}
