package proxy

import "github.com/cuemby/invoker/pkg/types"

// EventKind tags the variant carried by an Event sent from a proxy to
// the supervisor.
type EventKind int

const (
	// NeedWork reports the proxy finished initializing (PreWarmedData)
	// or finished a job (WarmedData) and is ready for more work.
	NeedWork EventKind = iota
	// ContainerRemoved reports the proxy has torn down its container.
	ContainerRemoved
	// RescheduleJob reports the proxy could not execute its assigned
	// job; Run carries the job so the supervisor can re-admit it.
	RescheduleJob
)

// Event is the message a Container Proxy sends to its supervisor.
type Event struct {
	Kind   EventKind
	Worker types.WorkerID
	Data   types.ContainerData // meaningful for NeedWork
	Run    types.Run           // meaningful for RescheduleJob
}
