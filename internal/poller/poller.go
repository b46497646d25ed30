// Package poller periodically fetches machine status and folds it into the
// status display and the path store.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/philipparndt/cncview/internal/schedule"
	"github.com/philipparndt/cncview/internal/status"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/rs/zerolog"
)

// Source fetches one status snapshot
type Source interface {
	Status(ctx context.Context) (status.Snapshot, error)
}

// Options configures a poller
type Options struct {
	Interval time.Duration
	// StopOnTerminal stops polling once a snapshot reports a non-running state
	StopOnTerminal bool
	// Store receives reconciled points; nil polls status only
	Store *toolpath.Store
	// Display receives the present status fields; may be nil
	Display *status.Display
	// OnSnapshot is called after each applied snapshot
	OnSnapshot func(status.Snapshot)
	// OnTerminal is called after the poller stopped itself on a terminal state
	OnTerminal func(status.Snapshot)
}

// Poller issues at most one status request at a time at a fixed interval
type Poller struct {
	source Source
	opts   Options
	log    zerolog.Logger
	task   *schedule.Task

	running  atomic.Bool
	inFlight atomic.Bool

	mu       sync.Mutex
	idle     *sync.Cond
	requests int

	skipped atomic.Int64
	applied atomic.Int64
	failed  atomic.Int64
}

// New creates a stopped poller
func New(source Source, opts Options, log zerolog.Logger) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	p := &Poller{source: source, opts: opts, log: log}
	p.idle = sync.NewCond(&p.mu)
	p.task = schedule.New(opts.Interval, p.Tick, schedule.Immediate())
	return p
}

// Start begins polling with an immediate first request. It returns false if
// the poller is already running.
func (p *Poller) Start(ctx context.Context) bool {
	if !p.running.CompareAndSwap(false, true) {
		return false
	}
	p.log.Debug().Dur("interval", p.opts.Interval).Msg("Polling started")
	if !p.task.Start(ctx) {
		p.running.Store(false)
		return false
	}
	return true
}

// Stop cancels the timer. A response still in flight is discarded.
func (p *Poller) Stop() {
	if p.running.CompareAndSwap(true, false) {
		p.log.Debug().Msg("Polling stopped")
	}
	p.task.Stop()
}

// Running reports whether the poller is armed
func (p *Poller) Running() bool {
	return p.running.Load()
}

// InFlight reports whether a request is outstanding
func (p *Poller) InFlight() bool {
	return p.inFlight.Load()
}

// Wait blocks until no request is outstanding
func (p *Poller) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.requests > 0 {
		p.idle.Wait()
	}
}

func (p *Poller) begin() {
	p.mu.Lock()
	p.requests++
	p.mu.Unlock()
}

func (p *Poller) end() {
	p.mu.Lock()
	p.requests--
	p.mu.Unlock()
	p.idle.Broadcast()
}

// Stats returns how many ticks were skipped, and how many responses were
// applied or failed
func (p *Poller) Stats() (skipped, applied, failed int64) {
	return p.skipped.Load(), p.applied.Load(), p.failed.Load()
}

// Tick issues one request unless one is already outstanding. The request runs
// on its own goroutine so the timer keeps its cadence.
func (p *Poller) Tick(ctx context.Context) {
	if !p.running.Load() {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.log.Trace().Msg("Previous status request still in flight, skipping tick")
		return
	}

	var gen uint64
	if p.opts.Store != nil {
		gen = p.opts.Store.Generation()
	}

	p.begin()
	go func() {
		defer p.end()
		defer p.inFlight.Store(false)

		snap, err := p.source.Status(ctx)
		p.apply(gen, snap, err)
	}()
}

func (p *Poller) apply(gen uint64, snap status.Snapshot, err error) {
	if !p.running.Load() {
		p.log.Debug().Msg("Discarding status response after stop")
		return
	}

	if err != nil {
		p.failed.Add(1)
		p.log.Warn().Err(err).Msg("Status request failed")
		if p.opts.Display != nil {
			p.opts.Display.SetError(err)
		}
		return
	}
	p.applied.Add(1)

	if p.opts.Display != nil {
		p.opts.Display.Apply(snap)
	}

	for _, m := range snap.Malformed {
		p.log.Debug().Int("index", m.Index).Str("reason", m.Reason).Msg("Dropped malformed point")
	}

	if p.opts.Store != nil && snap.HasPoints {
		err := p.opts.Store.Reconcile(gen, snap.Points)
		switch {
		case errors.Is(err, toolpath.ErrStaleMutation):
			p.log.Debug().Uint64("generation", gen).Msg("Dropped status points for a stale generation")
		case err != nil:
			p.log.Warn().Err(err).Msg("Failed to reconcile status points")
		default:
			p.log.Trace().Int("points", len(snap.Points)).Msg("Reconciled status points")
		}
	}

	if p.opts.OnSnapshot != nil {
		p.opts.OnSnapshot(snap)
	}

	if p.opts.StopOnTerminal && snap.Terminal() {
		p.log.Info().Str("state", string(snap.State)).Msg("Machine no longer running, stopping tracking")
		p.Stop()
		if p.opts.OnTerminal != nil {
			p.opts.OnTerminal(snap)
		}
	}
}
