package proxy

import (
	"context"
	"time"

	"github.com/cuemby/invoker/pkg/health"
	"github.com/cuemby/invoker/pkg/log"
	"github.com/cuemby/invoker/pkg/runtime"
	"github.com/cuemby/invoker/pkg/types"
	"github.com/rs/zerolog"
)

// CheckerFactory builds a readiness checker for a container's address.
// Production code points this at health.NewHTTPChecker; tests can supply
// a factory that always reports healthy without a real container.
type CheckerFactory func(ip string) health.Checker

// Config bounds a proxy's lifecycle independent of any one job.
type Config struct {
	// IdleTimeout self-destructs a Started/Paused proxy that has gone
	// unused for this long.
	IdleTimeout time.Duration
	// MaxAge self-destructs a proxy this long after its container was
	// created, regardless of activity, to bound long-lived container
	// drift (stale dependencies, leaked file descriptors).
	MaxAge time.Duration
	// PauseDelay is how long a warm, job-free proxy waits before
	// pausing its container to release CPU while remaining counted as
	// free. Zero disables pausing.
	PauseDelay time.Duration
	// HealthCheck configures the init-readiness probe retried after
	// container start.
	HealthCheck health.Config
}

// Proxy is the per-container state machine described by the pool design:
// it owns exactly one runtime container, serializes jobs against it, and
// reports state transitions to its supervisor over events. Each Proxy
// runs its own goroutine; the only way in is its commands channel, and
// the only way out is its events channel — no field is shared across
// the boundary.
type Proxy struct {
	id     types.WorkerID
	driver runtime.ContainerDriver
	exec   Executor
	checks CheckerFactory
	cfg    Config
	events chan<- Event

	commands chan Command
	logger   zerolog.Logger
}

// New constructs a Proxy. Call Run in its own goroutine to start it.
func New(id types.WorkerID, driver runtime.ContainerDriver, exec Executor, checks CheckerFactory, events chan<- Event, cfg Config) *Proxy {
	return &Proxy{
		id:       id,
		driver:   driver,
		exec:     exec,
		checks:   checks,
		cfg:      cfg,
		events:   events,
		commands: make(chan Command, 1),
		logger:   log.WithComponent("proxy"),
	}
}

// Commands returns the channel the supervisor sends Start/Run/Remove on.
func (p *Proxy) Commands() chan<- Command { return p.commands }

// Run drives the proxy's state machine until its container is removed or
// ctx is canceled. It is meant to run in its own goroutine.
func (p *Proxy) Run(ctx context.Context) {
	state := Uninitialized
	var containerID, containerIP string

	idle := time.NewTimer(forever)
	defer idle.Stop()
	age := time.NewTimer(forever)
	defer age.Stop()
	pauseDelay := time.NewTimer(forever)
	defer pauseDelay.Stop()

	armIdle := func() {
		if p.cfg.IdleTimeout > 0 {
			resetTimer(idle, p.cfg.IdleTimeout)
		}
	}
	armPause := func() {
		if p.cfg.PauseDelay > 0 {
			resetTimer(pauseDelay, p.cfg.PauseDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-age.C:
			p.selfDestruct(ctx, &state, containerID)
			return

		case <-idle.C:
			p.selfDestruct(ctx, &state, containerID)
			return

		case <-pauseDelay.C:
			if state != Started {
				continue
			}
			state = Pausing
			if err := p.driver.Pause(ctx, containerID); err != nil {
				p.logger.Warn().Err(err).Str("worker", string(p.id)).Msg("pause failed, leaving container running")
				state = Started
				continue
			}
			state = Paused

		case cmd := <-p.commands:
			switch cmd.Kind {
			case StartCmd:
				if state != Uninitialized {
					p.logger.Warn().Str("worker", string(p.id)).Msg("Start delivered to non-uninitialized proxy, ignoring")
					continue
				}
				state = Starting
				var ok bool
				containerID, containerIP, ok = p.initialize(ctx, cmd.Exec)
				if !ok {
					p.logger.Error().Str("worker", string(p.id)).Msg("prewarm initialization failed")
					p.finishRemoved(ctx, containerID)
					return
				}
				state = Started
				p.events <- Event{Kind: NeedWork, Worker: p.id, Data: types.PreWarmedData(cmd.Exec)}
				armIdle()
				armPause()
				age.Reset(p.cfg.effectiveMaxAge())

			case RunCmd:
				if state == Running || state == Starting || state == Removing || state == Removed {
					p.events <- Event{Kind: RescheduleJob, Worker: p.id, Run: cmd.Run}
					continue
				}

				if state == Uninitialized {
					state = Starting
					var ok bool
					containerID, containerIP, ok = p.initialize(ctx, cmd.Run.Action.Params())
					if !ok {
						p.reschedule(ctx, containerID, cmd.Run)
						return
					}
					age.Reset(p.cfg.effectiveMaxAge())
				}

				if state == Paused {
					if err := p.driver.Resume(ctx, containerID); err != nil {
						p.logger.Warn().Err(err).Str("worker", string(p.id)).Msg("resume failed")
						p.reschedule(ctx, containerID, cmd.Run)
						return
					}
				}

				state = Running
				if err := p.exec.Execute(ctx, containerIP, cmd.Run); err != nil {
					p.logger.Warn().Err(err).Str("worker", string(p.id)).Str("action", cmd.Run.Action.Name).Msg("execution failed, rescheduling")
					p.reschedule(ctx, containerID, cmd.Run)
					return
				}

				data := types.WarmedData(cmd.Run.Action, cmd.Run.Message.Namespace, time.Now())
				state = Started
				p.events <- Event{Kind: NeedWork, Worker: p.id, Data: data}
				armIdle()
				armPause()

			case RemoveCmd:
				p.selfDestruct(ctx, &state, containerID)
				return
			}
		}
	}
}

// initialize creates and starts the container, waits out the health
// check's start period, then polls the init-readiness endpoint until it
// passes or the retry budget is exhausted.
func (p *Proxy) initialize(ctx context.Context, exec types.ExecParams) (containerID, ip string, ok bool) {
	id, err := p.driver.Create(ctx, p.id, exec)
	if err != nil {
		p.logger.Error().Err(err).Str("worker", string(p.id)).Msg("container create failed")
		return "", "", false
	}

	if err := p.driver.Start(ctx, id); err != nil {
		p.logger.Error().Err(err).Str("worker", string(p.id)).Msg("container start failed")
		return id, "", false
	}

	ip, err = p.driver.IP(ctx, id)
	if err != nil {
		p.logger.Error().Err(err).Str("worker", string(p.id)).Msg("container IP lookup failed")
		return id, "", false
	}

	if !p.probeReady(ctx, ip) {
		p.logger.Error().Str("worker", string(p.id)).Msg("container never became ready")
		return id, ip, false
	}

	return id, ip, true
}

func (p *Proxy) probeReady(ctx context.Context, ip string) bool {
	if p.checks == nil {
		return true
	}
	checker := p.checks(ip)
	cfg := p.cfg.HealthCheck

	if cfg.StartPeriod > 0 {
		select {
		case <-time.After(cfg.StartPeriod):
		case <-ctx.Done():
			return false
		}
	}

	status := health.NewProbeState()
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		result := checker.Check(ctx)
		status.Update(result, cfg)
		if status.Healthy && result.Healthy {
			return true
		}
		select {
		case <-time.After(cfg.Interval):
		case <-ctx.Done():
			return false
		}
	}
	return false
}

// reschedule implements the Started(warm) + Run transient-failure path:
// notify the supervisor the job must be retried elsewhere, then tear
// down and report removal.
func (p *Proxy) reschedule(ctx context.Context, containerID string, run types.Run) {
	p.events <- Event{Kind: RescheduleJob, Worker: p.id, Run: run}
	p.finishRemoved(ctx, containerID)
}

func (p *Proxy) selfDestruct(ctx context.Context, state *State, containerID string) {
	*state = Removing
	p.finishRemoved(ctx, containerID)
}

func (p *Proxy) finishRemoved(ctx context.Context, containerID string) {
	if containerID != "" {
		if err := p.driver.Delete(ctx, containerID, 10*time.Second); err != nil {
			p.logger.Warn().Err(err).Str("worker", string(p.id)).Msg("container delete failed during teardown")
		}
	}
	p.events <- Event{Kind: ContainerRemoved, Worker: p.id}
}

func (c Config) effectiveMaxAge() time.Duration {
	if c.MaxAge > 0 {
		return c.MaxAge
	}
	return forever
}

// forever stands in for "no timeout armed" — time.Timer has no native
// disabled state short of stopping and never resetting it, and this
// loop always selects across all three timers.
const forever = 1<<63 - 1

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
