package proxy

import "github.com/cuemby/invoker/pkg/types"

// CommandKind tags the variant carried by a Command sent from the
// supervisor to a proxy.
type CommandKind int

const (
	// StartCmd asks an Uninitialized proxy to create and initialize a
	// prewarm container for the given exec params.
	StartCmd CommandKind = iota
	// RunCmd asks the proxy to execute a job.
	RunCmd
	// RemoveCmd asks the proxy to tear down its container.
	RemoveCmd
)

// Command is the message the supervisor sends to a Container Proxy.
type Command struct {
	Kind CommandKind
	Exec types.ExecParams // meaningful for StartCmd
	Run  types.Run        // meaningful for RunCmd
}
