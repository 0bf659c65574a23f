package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/logger"
	"github.com/rileyhilliard/pingraph/internal/ping"
	"github.com/rileyhilliard/pingraph/internal/target"
)

// Opener starts a stream for one target. Errors are reported as the
// target's terminal failure.
type Opener func(ctx context.Context, t target.Target) (ping.Stream, error)

// Orchestrator runs one worker per target and delivers their results on a
// single channel. Workers never wait on each other: a stalled target only
// blocks its own worker.
type Orchestrator struct {
	targets []target.Target
	open    Opener
	events  chan Event
	log     logger.Logger

	interval     time.Duration
	restartMax   int
	restartDelay time.Duration
	now          func() time.Time
	start        time.Time

	started atomic.Int32
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for stream lifecycle events.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRestart reopens a stream up to limit times after its process exits,
// waiting delay between attempts. Command targets never restart since their
// streams do not exit.
func WithRestart(limit int, delay time.Duration) Option {
	return func(o *Orchestrator) {
		o.restartMax = limit
		o.restartDelay = delay
	}
}

// WithTickInterval sets the interval used to number event ticks.
func WithTickInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator creates an orchestrator for targets. Nothing starts until Run.
func NewOrchestrator(targets []target.Target, open Opener, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		targets:  targets,
		open:     open,
		log:      logger.Noop(),
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.events = make(chan Event, 4*len(targets)+1)
	return o
}

// Events is the delivery channel. It is closed when Run returns.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Started returns how many targets opened a stream at least once.
func (o *Orchestrator) Started() int {
	return int(o.started.Load())
}

// Run starts every worker and blocks until all of them have stopped and
// released their streams. Cancelling ctx is a normal shutdown and returns nil.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer close(o.events)
	o.start = o.now()

	var g errgroup.Group
	for _, t := range o.targets {
		g.Go(func() error {
			o.runTarget(ctx, t)
			return nil
		})
	}

	err := g.Wait()
	o.log.Debug("all %d workers stopped after running %s", len(o.targets), o.now().Sub(o.start))
	return err
}

func (o *Orchestrator) runTarget(ctx context.Context, t target.Target) {
	for attempt := 0; ; attempt++ {
		exited, ok := o.runStream(ctx, t, attempt)
		if !ok || !exited {
			return
		}
		o.log.Info("restarting %s in %s (attempt %d of %d)", t.Label, o.restartDelay, attempt+1, o.restartMax)
		select {
		case <-ctx.Done():
			return
		case <-time.After(o.restartDelay):
		}
	}
}

// runStream opens and drains one stream. It returns exited=true when the
// stream ended with an Exited result that should be followed by a restart.
// ok is false once the worker should stop.
func (o *Orchestrator) runStream(ctx context.Context, t target.Target, attempt int) (exited, ok bool) {
	s, err := o.open(ctx, t)
	if err != nil {
		if ctx.Err() != nil {
			return false, false
		}
		o.log.Error("%s", errors.ShortMessage(err))
		o.send(ctx, Event{Target: t.Index, Err: err})
		return false, false
	}
	defer s.Close()

	if attempt == 0 {
		o.started.Add(1)
	}
	o.log.Debug("stream for %s opened", t.Label)

	for {
		r, err := s.Next(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return false, false
		case errors.IsShutdown(err):
			return false, false
		default:
			o.log.Error("%s stream failed: %v", t.Label, err)
			o.send(ctx, Event{Target: t.Index, Err: errors.Wrap(err, "Reading "+t.Label+" failed")})
			return false, false
		}

		ev := Event{Target: t.Index, Result: r}
		if r.Kind == ping.Exited {
			ev.Restarting = !t.IsCommand() && attempt < o.restartMax
			o.log.Warn("%s process exited with code %d: %s", t.Label, r.ExitCode, r.Stderr)
		}
		if !o.send(ctx, ev) {
			return false, false
		}
		if r.Kind == ping.Exited {
			return ev.Restarting, true
		}
	}
}

// send delivers ev unless ctx ends first.
func (o *Orchestrator) send(ctx context.Context, ev Event) bool {
	ev.At = o.now()
	ev.Tick = int64(ev.At.Sub(o.start) / o.interval)
	select {
	case o.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
