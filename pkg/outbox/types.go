package outbox

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message is the unit stored in an outbox table.
type Message struct {
	WorkspaceID uuid.UUID
	Topic       string
	EventID     uuid.UUID
	Payload     json.RawMessage
}

// Meta is the stable dispatch metadata (idempotency + tracing + ops).
type Meta struct {
	Table       pgx.Identifier
	WorkspaceID uuid.UUID
	Topic       string
	EventID     uuid.UUID
	Sequence    int64
	Attempts    int

	// Optional tracing context (W3C Trace Context).
	TraceParent string
	TraceState  string
}

// DispatchedMessage is the unit delivered by Relay to Dispatcher.
type DispatchedMessage struct {
	Meta    Meta
	Payload json.RawMessage
}
