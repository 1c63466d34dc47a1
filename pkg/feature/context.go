package feature

import "github.com/google/uuid"

// State tracks one dispatched operation through its phases. ABORTED means a
// validate handler rejected the operation before any mutation; FAILED means
// the business operation itself threw after validation passed.
type State string

const (
	StateStarted        State = "STARTED"
	StateValidating     State = "VALIDATING"
	StateAborted        State = "ABORTED"
	StateExecuting      State = "EXECUTING"
	StateSucceeded      State = "SUCCEEDED"
	StatePostProcessing State = "POST_PROCESSING"
	StateFailed         State = "FAILED"
	StateErrorHandling  State = "ERROR_HANDLING"
	StateDone           State = "DONE"
)

// Context is the per-operation scratch state shared across handler phases.
// It is created by the dispatcher, lives for one operation's call stack and
// is never shared across goroutines, so it needs no locking. The attribute
// map is open for handler-to-handler communication (e.g. the audit handler
// stashing a pre-state snapshot between Before and After).
type Context struct {
	WorkspaceID uuid.UUID
	ActorID     uuid.UUID

	attributes map[string]any
	failed     bool
	state      State
	history    []State
}

func NewContext(workspaceID, actorID uuid.UUID) *Context {
	return &Context{
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		attributes:  make(map[string]any),
		state:       StateStarted,
		history:     []State{StateStarted},
	}
}

func (c *Context) Set(key string, value any) {
	c.attributes[key] = value
}

func (c *Context) Get(key string) (any, bool) {
	value, ok := c.attributes[key]
	return value, ok
}

func (c *Context) GetString(key string) (string, bool) {
	value, ok := c.attributes[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func (c *Context) MarkFailed() {
	c.failed = true
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) State() State {
	return c.state
}

// StateHistory returns every state the operation passed through, in order.
// Terminal outcome states (SUCCEEDED, FAILED) are transient on the way to
// post-processing or error handling, so the history is the only place they
// remain visible once the operation is DONE.
func (c *Context) StateHistory() []State {
	out := make([]State, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Context) transition(s State) {
	c.state = s
	c.history = append(c.history, s)
}
