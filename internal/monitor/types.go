package monitor

import (
	"math"
	"time"

	"github.com/rileyhilliard/pingraph/internal/ping"
)

// Event is one result from a target worker, tagged for the aggregator.
type Event struct {
	// Target is the index of the target that produced the event.
	Target int
	// Tick is the wall-clock tick number the event arrived in, counted from
	// the start of the run.
	Tick int64
	At   time.Time
	// Result is valid when Err is nil.
	Result ping.Result
	// Err is a terminal, target-scoped failure, usually a SPAWN error.
	Err error
	// Restarting is set on an Exited result when the orchestrator is going
	// to reopen the stream.
	Restarting bool
}

// Terminal reports whether the event ends its target.
func (e Event) Terminal() bool {
	if e.Err != nil {
		return true
	}
	return e.Result.Kind == ping.Exited && !e.Restarting
}

// Status is the lifecycle state of one series.
type Status int

const (
	// StatusActive series advance one slot per tick.
	StatusActive Status = iota
	// StatusExited series stopped because their process ended.
	StatusExited
	// StatusFailed series never produced results because the stream could not start.
	StatusFailed
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExited:
		return "exited"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sample is one tick slot. Invalid samples are gaps: no reply that tick.
type Sample struct {
	Value time.Duration
	Valid bool
}

// Gap is the sample recorded for a tick with no reply.
var Gap = Sample{}

// Bounds is the latency range across all series. Empty is set when no
// series holds a valid sample, in which case Min and Max are zero.
type Bounds struct {
	Min   time.Duration
	Max   time.Duration
	Empty bool
}

// Span returns Max-Min, or zero for empty bounds.
func (b Bounds) Span() time.Duration {
	if b.Empty {
		return 0
	}
	return b.Max - b.Min
}

// Window describes the tick cadence and how much history each series keeps.
type Window struct {
	Interval time.Duration
	Buffer   time.Duration
}

// MaxCapacity caps the slots kept per series.
const MaxCapacity = 100_000

// Capacity is the number of slots per series: Buffer/Interval rounded, at
// least 1 and at most MaxCapacity.
func (w Window) Capacity() int {
	if w.Interval <= 0 {
		return 1
	}
	n := math.Round(float64(w.Buffer) / float64(w.Interval))
	switch {
	case n < 1:
		return 1
	case n > MaxCapacity:
		return MaxCapacity
	}
	return int(n)
}

// SeriesSnapshot is a read-only copy of one series.
type SeriesSnapshot struct {
	Index  int
	Label  string
	Status Status
	// Samples are ordered oldest to newest.
	Samples []Sample
	// EndTick is the tick of the newest sample. Series that stopped lag
	// behind Snapshot.Tick.
	EndTick int64
	Stats   Stats
	// Err is set for failed series.
	Err error
	// ExitCode and Stderr describe how an exited process ended.
	ExitCode int
	Stderr   string
	Restarts int
}

// Snapshot is an immutable view of the aggregator for one redraw.
type Snapshot struct {
	Series []SeriesSnapshot
	Bounds Bounds
	Tick   int64
	Window Window
}

// Active returns the number of series still advancing.
func (s Snapshot) Active() int {
	n := 0
	for _, ss := range s.Series {
		if ss.Status == StatusActive {
			n++
		}
	}
	return n
}

// AllFailed reports whether no series ever started.
func (s Snapshot) AllFailed() bool {
	if len(s.Series) == 0 {
		return false
	}
	for _, ss := range s.Series {
		if ss.Status != StatusFailed {
			return false
		}
	}
	return true
}
