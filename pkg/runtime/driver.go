package runtime

import (
	"context"
	"time"

	"github.com/cuemby/invoker/pkg/types"
)

// ContainerStatus is the runtime-observed state of a backing container,
// independent of the pool's own ContainerKind bookkeeping.
type ContainerStatus int

const (
	StatusUnknown ContainerStatus = iota
	StatusCreated
	StatusRunning
	StatusPaused
	StatusStopped
)

// ContainerDriver is the interface the Container Proxy uses to manage the
// backing runtime container for a worker slot. Implementations own image
// pulls, OCI spec generation, and the pause/resume freeze used to park an
// idle warm container without tearing it down.
type ContainerDriver interface {
	// Create pulls the image for exec (if needed) and creates a
	// container, returning an opaque runtime container ID.
	Create(ctx context.Context, workerID types.WorkerID, exec types.ExecParams) (string, error)

	// Start launches the container's entrypoint.
	Start(ctx context.Context, containerID string) error

	// Pause freezes the container's process tree in place.
	Pause(ctx context.Context, containerID string) error

	// Resume unfreezes a paused container.
	Resume(ctx context.Context, containerID string) error

	// Delete stops (if running) and removes the container and its
	// snapshot. Idempotent: deleting an already-gone container is not
	// an error.
	Delete(ctx context.Context, containerID string, timeout time.Duration) error

	// Status reports the runtime's view of a container's lifecycle state.
	Status(ctx context.Context, containerID string) (ContainerStatus, error)

	// IP returns the container's address on the pool's internal
	// network, used to build the init-readiness probe URL and the
	// activation request target.
	IP(ctx context.Context, containerID string) (string, error)
}
