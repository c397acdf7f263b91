package pool

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/invoker/pkg/log"
	"github.com/cuemby/invoker/pkg/metrics"
	"github.com/cuemby/invoker/pkg/policy"
	"github.com/cuemby/invoker/pkg/proxy"
	"github.com/cuemby/invoker/pkg/runtime"
	"github.com/cuemby/invoker/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Feed is the callback surface the supervisor needs from the upstream
// message feed: a capacity slot became free. The supervisor never calls
// back into anything else and never pulls — the feed pushes Runs via
// Submit.
type Feed interface {
	Processed()
}

type proxyHandle struct {
	commands chan<- proxy.Command
	cancel   context.CancelFunc
}

// Supervisor is the single-writer owner of the pool's scheduling state:
// free, busy, and prewarmed. Every mutation happens inside Run's message
// loop; nothing else touches these maps.
type Supervisor struct {
	cfg    Config
	driver runtime.ContainerDriver
	exec   proxy.Executor
	checks proxy.CheckerFactory
	feed   Feed
	logger zerolog.Logger

	free      map[types.WorkerID]types.ContainerData
	busy      map[types.WorkerID]types.ContainerData
	prewarmed map[types.WorkerID]types.ContainerData
	proxies   map[types.WorkerID]proxyHandle

	runs   chan types.Run
	events chan proxy.Event
	drain  chan chan struct{}

	// drainDone is non-nil only while a Shutdown-initiated drain is in
	// progress; set and read only from the Run goroutine.
	drainDone chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSupervisor constructs a pool Supervisor. Call Run to start its
// message loop; it performs the prewarm population's initial fill as
// part of startup.
func NewSupervisor(cfg Config, driver runtime.ContainerDriver, exec proxy.Executor, checks proxy.CheckerFactory, feed Feed) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Supervisor{
		cfg:    cfg,
		driver: driver,
		exec:   exec,
		checks: checks,
		feed:   feed,
		logger: log.WithComponent("pool"),

		free:      make(map[types.WorkerID]types.ContainerData),
		busy:      make(map[types.WorkerID]types.ContainerData),
		prewarmed: make(map[types.WorkerID]types.ContainerData),
		proxies:   make(map[types.WorkerID]proxyHandle),

		runs:   make(chan types.Run, 256),
		events: make(chan proxy.Event, 256),
		drain:  make(chan chan struct{}),

		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// SetFeed wires the feed after construction, for callers where the feed
// itself needs a reference to the supervisor (a Submitter) to build.
// Must be called before Run; not safe to call concurrently with it.
func (s *Supervisor) SetFeed(feed Feed) {
	s.feed = feed
}

// Submit delivers a Run to the supervisor. Safe to call concurrently;
// the feed is expected to respect maxActiveContainers as its own
// backpressure signal, but Submit itself never blocks indefinitely past
// context cancellation.
func (s *Supervisor) Submit(r types.Run) {
	select {
	case s.runs <- r:
	case <-s.ctx.Done():
	}
}

// Run starts the prewarm population's initial fill and then processes
// messages until ctx is canceled or a drain completes. Meant to be
// called once, typically in its own goroutine.
func (s *Supervisor) Run(ctx context.Context) {
	s.fillPrewarmPopulation()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case done := <-s.drain:
			s.beginDrain(done)
		case r := <-s.runs:
			if s.drainDone == nil {
				s.scheduleRun(r)
			}
		case e := <-s.events:
			s.handleEvent(e)
			if s.drainDone != nil && len(s.proxies) == 0 {
				close(s.drainDone)
				s.drainDone = nil
				s.cancel()
			}
		}
	}
}

// Shutdown requests a cooperative drain: every live proxy (free, busy,
// and prewarmed alike) is sent Remove, and Shutdown waits for all of
// them to report ContainerRemoved before returning, matching spec.md
// §5's "shutdown is cooperative and drains through Remove messages."
func (s *Supervisor) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case s.drain <- done:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginDrain sends Remove to every live proxy. If there are none, the
// drain is already complete.
func (s *Supervisor) beginDrain(done chan struct{}) {
	if len(s.proxies) == 0 {
		close(done)
		s.cancel()
		return
	}
	s.drainDone = done
	for _, handle := range s.proxies {
		handle.commands <- proxy.Command{Kind: proxy.RemoveCmd}
	}
}

// Snapshot is a point-in-time view of pool occupancy, exposed for the
// operator HTTP surface (pkg/operator's /debug/pool).
type Snapshot struct {
	Free      int
	Busy      int
	Prewarmed int
	Capacity  int
}

// Snapshot is unsynchronized with the message loop by design: callers
// get an approximate read without adding a round trip through the
// supervisor's own channel, matching spec.md's "exact LRU under
// contention" non-goal — precision here isn't load-bearing.
func (s *Supervisor) Snapshot() Snapshot {
	return Snapshot{
		Free:      len(s.free),
		Busy:      len(s.busy),
		Prewarmed: len(s.prewarmed),
		Capacity:  s.cfg.MaxActiveContainers,
	}
}

// scheduleRun implements the algorithm in spec.md §4.1.
func (s *Supervisor) scheduleRun(r types.Run) {
	if len(s.busy) >= s.cfg.MaxActiveContainers {
		s.saturate(r)
		return
	}

	if id, ok := policy.SelectWarm(s.free, r.Action, r.Message.Namespace); ok {
		s.admit(id, "warm", r)
		return
	}

	if len(s.busy)+len(s.free) < s.cfg.MaxActiveContainers {
		exec := r.Action.Params()
		if id, ok := s.promotePrewarm(exec); ok {
			s.admit(id, "prewarmed", r)
			return
		}
		id := s.createCold()
		s.admit(id, "cold", r)
		return
	}

	if victim, ok := policy.SelectVictim(s.free); ok {
		s.evict(victim)
		exec := r.Action.Params()
		if id, ok := s.promotePrewarm(exec); ok {
			s.admit(id, "recreated", r)
			return
		}
		id := s.createCold()
		s.admit(id, "recreated", r)
		return
	}

	s.saturate(r)
}

// admit moves a worker (already placed in free by the caller) into busy
// and forwards the job to its proxy.
func (s *Supervisor) admit(id types.WorkerID, label string, r types.Run) {
	data, ok := s.free[id]
	if !ok {
		s.logger.Error().Str("worker", string(id)).Msg("admit called on worker not in free, dropping run")
		return
	}
	delete(s.free, id)
	s.busy[id] = data

	handle, ok := s.proxies[id]
	if !ok {
		s.logger.Error().Str("worker", string(id)).Msg("admit called on worker with no live proxy")
		delete(s.busy, id)
		return
	}
	handle.commands <- proxy.Command{Kind: proxy.RunCmd, Run: r}

	metrics.ContainerStart(label)
	s.logger.Info().Str("worker", string(id)).Str("outcome", label).Str("action", r.Action.Name).Msg("scheduled run")
}

// promotePrewarm finds a matching prewarm worker, moves it into free,
// and immediately enqueues its replacement. The caller is responsible
// for moving the returned id on into busy via admit.
func (s *Supervisor) promotePrewarm(exec types.ExecParams) (types.WorkerID, bool) {
	id, ok := policy.SelectPrewarm(s.prewarmed, exec)
	if !ok {
		return "", false
	}
	data := s.prewarmed[id]
	delete(s.prewarmed, id)
	s.free[id] = data

	s.startPrewarm(exec)

	return id, true
}

// createCold creates a fresh proxy in NoData state and places it in
// free; its container isn't created until the proxy itself handles the
// forwarded Run (the Uninitialized+Run cold path in pkg/proxy).
func (s *Supervisor) createCold() types.WorkerID {
	id := s.newProxy()
	s.free[id] = types.NoContainerData()
	return id
}

// evict removes a victim from free and tells its proxy to tear down.
// The worker leaves free immediately; its proxies entry stays until the
// proxy's ContainerRemoved arrives and handleContainerRemoved deletes it.
func (s *Supervisor) evict(id types.WorkerID) {
	delete(s.free, id)
	if handle, ok := s.proxies[id]; ok {
		handle.commands <- proxy.Command{Kind: proxy.RemoveCmd}
	}
}

// saturate implements the no-outcome path: log at most once per
// logMessageInterval for this Run and re-post it to the back of the
// queue. The retry-log deadline travels on the Run itself, so each
// distinct saturated Run logs on its first bounce; a Run is counted in
// the saturation metric on that first bounce only.
func (s *Supervisor) saturate(r types.Run) {
	now := time.Now()
	deadline := r.RetryLogDeadline

	if !r.HasRetryDeadline() {
		metrics.PoolSaturated()
	}

	if !r.HasRetryDeadline() || now.After(deadline) {
		s.logger.Error().
			Int("busy", len(s.busy)).
			Int("free", len(s.free)).
			Int("capacity", s.cfg.MaxActiveContainers).
			Msg("pool saturated, rescheduling run")
		deadline = now.Add(s.cfg.logInterval())
	}

	s.repost(types.Run{Action: r.Action, Message: r.Message, RetryLogDeadline: deadline})
}

// repost re-enters a Run at the back of the queue without blocking the
// message loop, so a burst of saturated reschedules can never deadlock
// against the very loop that would drain them.
func (s *Supervisor) repost(r types.Run) {
	go s.Submit(r)
}

func (s *Supervisor) handleEvent(e proxy.Event) {
	switch e.Kind {
	case proxy.NeedWork:
		s.handleNeedWork(e)
	case proxy.ContainerRemoved:
		s.handleContainerRemoved(e)
	case proxy.RescheduleJob:
		s.handleRescheduleJob(e)
	}
}

func (s *Supervisor) handleNeedWork(e proxy.Event) {
	switch e.Data.Kind {
	case types.Warmed:
		_, wasBusy := s.busy[e.Worker]
		delete(s.busy, e.Worker)
		s.free[e.Worker] = e.Data
		if wasBusy {
			s.feed.Processed()
		}
	case types.PreWarmed:
		s.prewarmed[e.Worker] = e.Data
	}
}

func (s *Supervisor) handleContainerRemoved(e proxy.Event) {
	_, wasBusy := s.busy[e.Worker]
	delete(s.free, e.Worker)
	delete(s.busy, e.Worker)
	delete(s.prewarmed, e.Worker)
	delete(s.proxies, e.Worker)
	if wasBusy {
		s.feed.Processed()
	}
}

func (s *Supervisor) handleRescheduleJob(e proxy.Event) {
	delete(s.free, e.Worker)
	delete(s.busy, e.Worker)
	delete(s.prewarmed, e.Worker)
	delete(s.proxies, e.Worker)
	s.repost(e.Run)
}

// newProxy creates and starts a Container Proxy goroutine, registers
// its command channel, and returns its id.
func (s *Supervisor) newProxy() types.WorkerID {
	id := types.WorkerID(uuid.New().String())

	proxyCtx, cancel := context.WithCancel(s.ctx)
	p := proxy.New(id, s.driver, s.exec, s.checks, s.events, s.cfg.Proxy)
	s.proxies[id] = proxyHandle{commands: p.Commands(), cancel: cancel}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		p.Run(proxyCtx)
	}()

	return id
}

// startPrewarm creates a fresh proxy and sends it Start for exec. Used
// both for the initial prewarm fill and for replenishment after a
// promotion (spec.md §4.3); in both cases the Start carries only
// (kind, memory), never the triggering action's code — the prewarm
// code-field hazard guard is structural, since ExecParams has no field
// to leak from.
func (s *Supervisor) startPrewarm(exec types.ExecParams) {
	id := s.newProxy()
	s.proxies[id].commands <- proxy.Command{Kind: proxy.StartCmd, Exec: exec}
}

func (s *Supervisor) fillPrewarmPopulation() {
	for _, spec := range s.cfg.PrewarmConfig {
		for i := 0; i < spec.Count; i++ {
			s.startPrewarm(spec.exec())
		}
	}
}
