package types

import "time"

// Action identifies executable user code. Equality is structural on
// Name and Revision together — two revisions of the same action are
// different actions for the purpose of warm-container reuse.
type Action struct {
	Name     string
	Revision string
	Kind     string // execution kind, e.g. "nodejs:20"
	MemoryMB int
	Timeout  time.Duration
}

// Equal reports whether two actions are the same action and revision.
// Ephemeral fields (Kind, MemoryMB, Timeout) are deliberately excluded:
// the spec requires equality on name+revision only.
func (a Action) Equal(other Action) bool {
	return a.Name == other.Name && a.Revision == other.Revision
}

// ExecParams is the subset of an Action that prewarm containers care
// about. A replacement prewarm Start request is built from ExecParams,
// never from the Action itself, so tenant code can never leak into a
// replacement container.
type ExecParams struct {
	Kind     string
	MemoryMB int
}

// Params extracts the prewarm-relevant fields of an action.
func (a Action) Params() ExecParams {
	return ExecParams{Kind: a.Kind, MemoryMB: a.MemoryMB}
}

// ActivationMessage carries the identity and payload of one invocation.
type ActivationMessage struct {
	Namespace     string // tenant namespace
	ActivationID  string
	TransactionID string
	Args          []byte // opaque JSON blob
}

// Run is an invocation request delivered by the Feed Adapter.
type Run struct {
	Action           Action
	Message          ActivationMessage
	RetryLogDeadline time.Time // zero value means "no deadline armed yet"
}

// HasRetryDeadline reports whether r carries a previously-armed
// retry-log deadline.
func (r Run) HasRetryDeadline() bool {
	return !r.RetryLogDeadline.IsZero()
}

// WorkerID identifies a container-worker slot — the key used in the
// pool's free/busy/prewarmed maps and the handle a Container Proxy is
// addressed by.
type WorkerID string

// ContainerKind tags the variant held by a ContainerData value.
type ContainerKind int

const (
	// NoData means the worker slot is reserved but no container exists yet.
	NoData ContainerKind = iota
	// PreWarmed means a runtime is initialized but not assigned to a tenant.
	PreWarmed
	// Warmed means the container has executed for a specific (action, tenant).
	Warmed
	// Removed is terminal.
	Removed
)

func (k ContainerKind) String() string {
	switch k {
	case NoData:
		return "no_data"
	case PreWarmed:
		return "prewarmed"
	case Warmed:
		return "warmed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// ContainerData is the closed tagged-variant sum from the data model:
// NoData | PreWarmed(kind, memory) | Warmed(kind, memory, namespace,
// action, lastUsed) | Removed. Only the fields relevant to Kind are
// meaningful; callers switch on Kind before reading the rest.
//
// A worker's ContainerData only ever advances NoData -> PreWarmed ->
// Warmed -> Removed; replacement is always destroy-then-create, never
// a regression in place.
type ContainerData struct {
	Kind ContainerKind

	Exec ExecParams // meaningful for PreWarmed and Warmed

	Namespace string    // meaningful for Warmed
	Action    Action    // meaningful for Warmed
	LastUsed  time.Time // meaningful for Warmed; snapshot taken at transition-to-warm
}
