package ping

import (
	"context"
	"io"
	"time"

	"github.com/rileyhilliard/pingraph/internal/exec"
	"github.com/rileyhilliard/pingraph/internal/logger"
	"golang.org/x/time/rate"
)

// commandStream runs a shell command once per interval and reports how long
// each run took. A run that fails to start or exits non-zero is a Timeout.
// The stream is unbounded; it ends only when its context does or it is closed.
type commandStream struct {
	spec     exec.Spec
	launcher exec.Launcher
	limiter  *rate.Limiter
	log      logger.Logger
	now      func() time.Time
	closed   bool
}

func newCommandStream(opts Options) *commandStream {
	return &commandStream{
		spec:     exec.Spec{Label: opts.Label, Command: opts.Target},
		launcher: opts.Launcher,
		limiter:  rate.NewLimiter(rate.Every(opts.Interval), 1),
		log:      opts.Logger,
		now:      time.Now,
	}
}

func (s *commandStream) Next(ctx context.Context) (Result, error) {
	if s.closed {
		return Result{}, context.Canceled
	}
	if err := s.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}

	start := s.now()
	code, stderr, err := exec.Run(ctx, s.launcher, s.spec, io.Discard)
	elapsed := s.now().Sub(start)

	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if err != nil {
		s.log.Debug("%s: run failed: %v", s.spec.Label, err)
		return TimeoutResult(""), nil
	}
	if code != 0 {
		s.log.Debug("%s: exit %d: %s", s.spec.Label, code, stderr)
		return TimeoutResult(""), nil
	}
	return PongResult(elapsed, ""), nil
}

// Close stops the stream. Each run's process is already reaped by the time
// Next returns.
func (s *commandStream) Close() error {
	s.closed = true
	return nil
}
