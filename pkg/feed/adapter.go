package feed

import (
	"context"

	"github.com/cuemby/invoker/pkg/log"
	"github.com/cuemby/invoker/pkg/types"
	"github.com/rs/zerolog"
)

// Submitter is the subset of the Pool Supervisor the Feed Adapter
// needs. Satisfied by *pool.Supervisor; declared here (rather than
// importing pool.Supervisor directly) so this package's public surface
// doesn't leak the supervisor's full API.
type Submitter interface {
	Submit(run types.Run)
}

// Adapter is the reference Feed Adapter described by spec.md §4.5: it
// accepts Runs from an upstream source, forwards them to the pool one
// at a time up to maxInFlight concurrent unacknowledged Runs, and
// implements pool.Feed so the supervisor can signal Processed back.
//
// Backpressure is a counting semaphore sized to maxInFlight (normally
// the pool's maxActiveContainers): Deliver blocks until a slot is free
// rather than ever dropping a Run, matching "if the feed cannot
// deliver, it buffers; the pool never pulls — the feed pushes."
type Adapter struct {
	submitter Submitter
	sem       chan struct{}
	logger    zerolog.Logger
}

// NewAdapter constructs an Adapter that never allows more than
// maxInFlight Runs to be outstanding with submitter at once.
func NewAdapter(submitter Submitter, maxInFlight int) *Adapter {
	return &Adapter{
		submitter: submitter,
		sem:       make(chan struct{}, maxInFlight),
		logger:    log.WithComponent("feed"),
	}
}

// Deliver hands one Run to the pool, blocking until a capacity slot is
// available or ctx is canceled. Safe to call from multiple goroutines.
func (a *Adapter) Deliver(ctx context.Context, run types.Run) error {
	select {
	case a.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	a.submitter.Submit(run)
	return nil
}

// Processed implements pool.Feed: the supervisor calls this exactly
// once per Run that was busy and is now idle-or-gone, freeing a slot
// for Deliver to admit the next one.
func (a *Adapter) Processed() {
	select {
	case <-a.sem:
	default:
		a.logger.Warn().Msg("Processed called with no outstanding delivery")
	}
}

// InFlight reports the current number of unacknowledged Runs. The
// operator HTTP surface does not report it; /debug/pool shows only pool
// occupancy.
func (a *Adapter) InFlight() int {
	return len(a.sem)
}
