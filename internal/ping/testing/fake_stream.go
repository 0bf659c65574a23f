// Package testing provides scripted ping streams for tests.
package testing

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rileyhilliard/pingraph/internal/ping"
)

// Step is one scripted stream event. Next waits Delay, then returns Result,
// or Err when it is set.
type Step struct {
	Delay  time.Duration
	Result ping.Result
	Err    error
}

// FakeStream replays Steps. After the script runs out it returns io.EOF, or
// blocks until its context ends or it is closed when Hold is set.
type FakeStream struct {
	mu      sync.Mutex
	steps   []Step
	pos     int
	hold    bool
	closed  bool
	closeCh chan struct{}
	closes  int
}

var _ ping.Stream = (*FakeStream)(nil)

// NewFakeStream creates a stream that replays steps in order.
func NewFakeStream(steps ...Step) *FakeStream {
	return &FakeStream{steps: steps, closeCh: make(chan struct{})}
}

// Hold makes the stream block after its script instead of ending.
func (f *FakeStream) Hold() *FakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = true
	return f
}

// Next returns the next scripted result.
func (f *FakeStream) Next(ctx context.Context) (ping.Result, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ping.Result{}, io.EOF
	}
	if f.pos >= len(f.steps) {
		hold := f.hold
		f.mu.Unlock()
		if !hold {
			return ping.Result{}, io.EOF
		}
		select {
		case <-ctx.Done():
			return ping.Result{}, ctx.Err()
		case <-f.closeCh:
			return ping.Result{}, io.EOF
		}
	}
	step := f.steps[f.pos]
	f.pos++
	f.mu.Unlock()

	if step.Delay > 0 {
		timer := time.NewTimer(step.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ping.Result{}, ctx.Err()
		case <-f.closeCh:
			return ping.Result{}, io.EOF
		case <-timer.C:
		}
	}
	if step.Err != nil {
		return ping.Result{}, step.Err
	}
	return step.Result, nil
}

// Close marks the stream closed.
func (f *FakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	if !f.closed {
		f.closed = true
		close(f.closeCh)
	}
	return nil
}

// Closed reports whether Close was called.
func (f *FakeStream) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Every returns n steps that each wait d and then produce r.
func Every(d time.Duration, n int, r ping.Result) []Step {
	out := make([]Step, n)
	for i := range out {
		out[i] = Step{Delay: d, Result: r}
	}
	return out
}

// Pongs returns steps producing one Pong per duration, each after delay.
func Pongs(delay time.Duration, ds ...time.Duration) []Step {
	out := make([]Step, len(ds))
	for i, d := range ds {
		out[i] = Step{Delay: delay, Result: ping.PongResult(d, "")}
	}
	return out
}
