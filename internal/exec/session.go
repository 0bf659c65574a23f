package exec

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

const (
	// lineBuffer bounds queued stdout lines between the reader and Next.
	lineBuffer = 16
	// maxLineBytes caps one stdout line. Longer lines are truncated and the
	// rest of the line is dropped.
	maxLineBytes = 64 * 1024
)

// Session owns one child process and its stdout. It is used by a single
// goroutine; Close may additionally be called from anywhere and is idempotent.
type Session struct {
	spec  Spec
	proc  Process
	lines chan string
	done  chan struct{}
	read  chan struct{}

	closeOnce sync.Once
	exitCode  int
	stderr    string
	readErr   error
}

// Start launches spec and begins reading its stdout. Launch failures are
// returned as SPAWN errors scoped to spec.Label.
func Start(ctx context.Context, l Launcher, spec Spec) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proc, err := l.Launch(ctx, spec)
	if err != nil {
		label := spec.Label
		if label == "" {
			label = spec.String()
		}
		return nil, errors.NewSpawn(label, err, spawnSuggestion(spec, err))
	}

	s := &Session{
		spec:  spec,
		proc:  proc,
		lines: make(chan string, lineBuffer),
		done:  make(chan struct{}),
		read:  make(chan struct{}),
	}
	go s.readLines()
	return s, nil
}

func (s *Session) readLines() {
	defer close(s.read)
	defer close(s.lines)

	r := bufio.NewReader(s.proc.Stdout())
	for {
		line, err := readLine(r)
		if err != nil {
			if !errors.IsShutdown(err) {
				s.readErr = err
			}
			return
		}
		select {
		case s.lines <- line:
		case <-s.done:
			return
		}
	}
}

// readLine returns the next line without its line ending, truncated to
// maxLineBytes.
func readLine(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		frag, isPrefix, err := r.ReadLine()
		if err != nil {
			if b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if room := maxLineBytes - b.Len(); room > 0 {
			b.Write(frag[:min(len(frag), room)])
		}
		if !isPrefix {
			return strings.TrimRight(b.String(), "\r"), nil
		}
	}
}

// Spec returns what the session is running.
func (s *Session) Spec() Spec {
	return s.spec
}

// Next blocks until the process prints another line. It returns io.EOF once
// stdout is closed, the read error if reading stdout failed, or ctx.Err() if
// the context ends first.
func (s *Session) Next(ctx context.Context) (string, error) {
	select {
	case line, ok := <-s.lines:
		if !ok {
			if s.readErr != nil {
				return "", s.readErr
			}
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close kills the process if it is still running, reaps it, and returns its
// exit code together with the tail of its stderr. Repeated calls return the
// same values.
func (s *Session) Close() (int, string) {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.proc.Kill()
		code, err := s.proc.Wait()
		if err != nil {
			code = -1
		}
		<-s.read
		s.exitCode = code
		s.stderr = s.proc.StderrTail()
	})
	return s.exitCode, s.stderr
}

// Run starts spec and waits for it to finish. Each stdout line is written to
// stdout followed by a newline; a nil stdout discards the output. It returns
// the exit code and the tail of stderr. Cancelling ctx kills the process.
func Run(ctx context.Context, l Launcher, spec Spec, stdout io.Writer) (code int, stderr string, err error) {
	if stdout == nil {
		stdout = io.Discard
	}
	s, err := Start(ctx, l, spec)
	if err != nil {
		return -1, "", err
	}
	defer s.Close()

	for {
		line, err := s.Next(ctx)
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return -1, "", err
		}
		if _, err := io.WriteString(stdout, line+"\n"); err != nil {
			return -1, "", err
		}
	}
	code, stderr = s.Close()
	return code, stderr, nil
}

func spawnSuggestion(spec Spec, err error) string {
	switch {
	case stderrors.Is(err, exec.ErrNotFound):
		return fmt.Sprintf("Make sure %q is installed and on your PATH.", spec.Name)
	case stderrors.Is(err, os.ErrPermission):
		return fmt.Sprintf("Check that %q is executable by your user.", spec.Name)
	case errors.IsCode(err, errors.ErrSSH):
		return "Check the --via host with: ssh <host> true"
	default:
		return ""
	}
}
