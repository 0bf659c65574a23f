package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/logger"
	"github.com/rileyhilliard/pingraph/internal/ping"
)

// Window defaults.
const (
	DefaultInterval = 200 * time.Millisecond
	DefaultBuffer   = 30 * time.Second
)

// Aggregator converts per-target events into tick-aligned sample rings.
//
// The rings are owned by a single goroutine: the one running Run, or a test
// calling Ingest and Tick directly. Other goroutines read through Snapshot,
// which returns the last published immutable copy.
type Aggregator struct {
	window Window
	series []*series
	tick   int64
	log    logger.Logger

	snap atomic.Pointer[Snapshot]
}

// series is the aggregator's private state for one target.
type series struct {
	index  int
	label  string
	ring   *sampleRing
	status Status

	// pending is the newest reply or timeout since the last tick.
	pending    Sample
	hasPending bool
	// terminal is set once the target has ended; applied on the next tick.
	terminal *Event

	endTick  int64
	err      error
	exitCode int
	stderr   string
	restarts int
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithAggregatorLogger sets the logger for lifecycle events.
func WithAggregatorLogger(l logger.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAggregator creates one empty series per label, in order.
func NewAggregator(labels []string, w Window, opts ...AggregatorOption) *Aggregator {
	if w.Interval <= 0 {
		w.Interval = DefaultInterval
	}
	if w.Buffer <= 0 {
		w.Buffer = DefaultBuffer
	}
	a := &Aggregator{
		window: w,
		log:    logger.Noop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	capacity := w.Capacity()
	for i, label := range labels {
		a.series = append(a.series, &series{
			index: i,
			label: label,
			ring:  newSampleRing(capacity),
		})
	}
	a.publish()
	return a
}

// Ingest records an event for the next tick. Only the newest reply per tick
// is kept. Unknown results are ignored, and events for stopped targets are
// dropped.
func (a *Aggregator) Ingest(ev Event) {
	if ev.Target < 0 || ev.Target >= len(a.series) {
		a.log.Warn("dropping event for unknown target %d", ev.Target)
		return
	}
	s := a.series[ev.Target]
	if s.status != StatusActive || s.terminal != nil {
		return
	}

	if ev.Err != nil {
		s.terminal = &ev
		return
	}

	switch ev.Result.Kind {
	case ping.Pong:
		s.pending = Sample{Value: ev.Result.Duration, Valid: true}
		s.hasPending = true
	case ping.Timeout:
		s.pending = Gap
		s.hasPending = true
	case ping.Exited:
		if ev.Restarting {
			s.restarts++
			a.log.Warn("%s exited with code %d at tick %d, restarting", s.label, ev.Result.ExitCode, ev.Tick)
			return
		}
		s.terminal = &ev
	}
}

// Tick advances every active series by one slot and applies pending exits.
// It does nothing once no series is active, leaving the last graph in place.
func (a *Aggregator) Tick() {
	active := false
	for _, s := range a.series {
		if s.status == StatusActive {
			active = true
			break
		}
	}
	if !active {
		return
	}

	a.tick++
	for _, s := range a.series {
		if s.status != StatusActive {
			continue
		}

		if s.terminal != nil && s.terminal.Err != nil {
			s.status = StatusFailed
			s.err = s.terminal.Err
			a.log.Error("%s failed: %s", s.label, errors.ShortMessage(s.err))
			continue
		}

		sample := Gap
		if s.hasPending {
			sample = s.pending
		}
		s.ring.push(sample)
		s.endTick = a.tick
		s.pending = Gap
		s.hasPending = false

		if s.terminal != nil {
			s.status = StatusExited
			s.exitCode = s.terminal.Result.ExitCode
			s.stderr = s.terminal.Result.Stderr
			a.log.Warn("%s exited with code %d at tick %d", s.label, s.exitCode, a.tick)
		}
	}
	a.publish()
}

// Resize changes the window length. Every series keeps its newest samples.
func (a *Aggregator) Resize(buffer time.Duration) {
	if buffer <= 0 || buffer == a.window.Buffer {
		return
	}
	a.window.Buffer = buffer
	capacity := a.window.Capacity()
	for _, s := range a.series {
		s.ring.resize(capacity)
	}
	a.log.Info("resized window to %s (%d slots)", buffer, capacity)
	a.publish()
}

// Snapshot returns the last published state. Calls between ticks return
// identical contents.
func (a *Aggregator) Snapshot() Snapshot {
	return *a.snap.Load()
}

// Run ticks at the window interval, ingesting events and resize requests
// until ctx ends. It then drains events until the channel is closed, so it
// returns only after every producer has stopped.
func (a *Aggregator) Run(ctx context.Context, events <-chan Event, resize <-chan time.Duration) error {
	ticker := time.NewTicker(a.window.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if events != nil {
				for ev := range events {
					a.Ingest(ev)
				}
			}
			a.publish()
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.Ingest(ev)
		case <-ticker.C:
			a.Tick()
		case d := <-resize:
			a.Resize(d)
		}
	}
}

func (a *Aggregator) publish() {
	snap := &Snapshot{
		Series: make([]SeriesSnapshot, len(a.series)),
		Bounds: Bounds{Empty: true},
		Tick:   a.tick,
		Window: a.window,
	}
	for i, s := range a.series {
		samples := s.ring.values()
		snap.Series[i] = SeriesSnapshot{
			Index:    s.index,
			Label:    s.label,
			Status:   s.status,
			Samples:  samples,
			EndTick:  s.endTick,
			Stats:    ComputeStats(samples),
			Err:      s.err,
			ExitCode: s.exitCode,
			Stderr:   s.stderr,
			Restarts: s.restarts,
		}
		lo, hi, ok := s.ring.bounds()
		if !ok {
			continue
		}
		if snap.Bounds.Empty || lo < snap.Bounds.Min {
			snap.Bounds.Min = lo
		}
		if snap.Bounds.Empty || hi > snap.Bounds.Max {
			snap.Bounds.Max = hi
		}
		snap.Bounds.Empty = false
	}
	a.snap.Store(snap)
}
