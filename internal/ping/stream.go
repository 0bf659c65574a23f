package ping

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/exec"
	"github.com/rileyhilliard/pingraph/internal/logger"
	"github.com/rileyhilliard/pingraph/internal/target"
)

// Stream is a lazy, finite sequence of results for one target. A stream is
// owned by one goroutine. Ping streams end with exactly one Exited result,
// after which Next returns io.EOF.
type Stream interface {
	// Next blocks until the next result. It returns ctx.Err() when ctx ends.
	Next(ctx context.Context) (Result, error)
	// Close releases the stream. Any child process is killed and reaped
	// before Close returns. Close is idempotent.
	Close() error
}

// Options configures how a target is measured.
type Options struct {
	Kind Kind
	// Target is the host (or command, for KindCommand) to measure.
	Target string
	// Label names the target in errors and logs. Defaults to Target.
	Label string
	// Interval between pings or command runs.
	Interval  time.Duration
	Family    target.Family
	Interface string
	// Launcher starts processes. Defaults to exec.LocalLauncher.
	Launcher exec.Launcher
	Logger   logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Label == "" {
		o.Label = o.Target
	}
	if o.Launcher == nil {
		o.Launcher = exec.LocalLauncher{}
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval(o.Kind)
	}
	return o
}

// DefaultInterval is the watch interval used when none is configured.
func DefaultInterval(k Kind) time.Duration {
	if k == KindCommand {
		return 500 * time.Millisecond
	}
	return 200 * time.Millisecond
}

// Open starts measuring one target. Failures to start the ping process are
// SPAWN errors. For KindCommand no process is started until the first Next.
func Open(ctx context.Context, opts Options) (Stream, error) {
	opts = opts.withDefaults()
	if opts.Kind == KindCommand {
		return newCommandStream(opts), nil
	}

	name, args, err := Args(opts.Kind, opts, opts.Target)
	if err != nil {
		return nil, errors.NewSpawn(opts.Label, err, "Check the --interface and --cmd options for this platform.")
	}
	if opts.Kind == KindWindows && opts.Interval != windowsInterval {
		opts.Logger.Warn("%s: Windows ping sends one request per %s, ignoring the %s interval",
			opts.Label, windowsInterval, opts.Interval)
	}
	spec := exec.Spec{Label: opts.Label, Name: name, Args: args}
	sess, err := exec.Start(ctx, opts.Launcher, spec)
	if err != nil {
		opts.Logger.Warn("spawn %s failed: %s", opts.Label, errors.ShortMessage(err))
		return nil, err
	}
	opts.Logger.Debug("spawned %s: %s", opts.Label, spec)
	return &pingStream{kind: opts.Kind, sess: sess, log: opts.Logger, label: opts.Label}, nil
}

// pingStream reads one long-lived ping process.
type pingStream struct {
	kind  Kind
	sess  *exec.Session
	log   logger.Logger
	label string
	ended bool
}

func (s *pingStream) Next(ctx context.Context) (Result, error) {
	if s.ended {
		return Result{}, io.EOF
	}
	line, err := s.sess.Next(ctx)
	if err == io.EOF {
		s.ended = true
		code, stderr := s.sess.Close()
		s.log.Info("%s: ping exited with code %d", s.label, code)
		return ExitedResult(code, stderr), nil
	}
	if err != nil {
		return Result{}, err
	}
	return Classify(s.kind, line), nil
}

func (s *pingStream) Close() error {
	s.ended = true
	s.sess.Close()
	return nil
}

// All yields every result of s until it ends, fails, or ctx is done. The
// stream is closed when iteration stops, including when the caller breaks
// out early.
func All(ctx context.Context, s Stream) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		defer s.Close()
		for {
			r, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(r) || r.Kind == Exited {
				return
			}
		}
	}
}
