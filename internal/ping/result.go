// Package ping turns the text output of the OS ping binary, or the runs of an
// arbitrary command, into a pull-based stream of typed results.
package ping

import (
	"fmt"
	"time"
)

// ResultKind tags a Result.
type ResultKind int

const (
	// Unknown is a line no rule recognised. It is not an error.
	Unknown ResultKind = iota
	// Pong is a reply with a measured latency.
	Pong
	// Timeout is an explicit timeout, unreachable, or failed run.
	Timeout
	// Exited ends a stream: the child process is gone.
	Exited
)

func (k ResultKind) String() string {
	switch k {
	case Pong:
		return "pong"
	case Timeout:
		return "timeout"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Result is one classified event from a stream.
type Result struct {
	Kind ResultKind
	// Duration is set for Pong.
	Duration time.Duration
	// Line is the raw output line, empty for Exited and command runs.
	Line string
	// ExitCode and Stderr are set for Exited.
	ExitCode int
	Stderr   string
}

// PongResult builds a Pong.
func PongResult(d time.Duration, line string) Result {
	return Result{Kind: Pong, Duration: d, Line: line}
}

// TimeoutResult builds a Timeout.
func TimeoutResult(line string) Result {
	return Result{Kind: Timeout, Line: line}
}

// UnknownResult builds an Unknown.
func UnknownResult(line string) Result {
	return Result{Kind: Unknown, Line: line}
}

// ExitedResult builds the terminal Exited result.
func ExitedResult(code int, stderr string) Result {
	return Result{Kind: Exited, ExitCode: code, Stderr: stderr}
}

func (r Result) String() string {
	switch r.Kind {
	case Pong:
		return fmt.Sprintf("pong %s", r.Duration)
	case Exited:
		return fmt.Sprintf("exited %d", r.ExitCode)
	default:
		return r.Kind.String()
	}
}
