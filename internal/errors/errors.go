package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/rileyhilliard/pingraph/internal/util"
)

// Error codes for categorizing errors
const (
	ErrConfig = "CONFIG"
	ErrSpawn  = "SPAWN"
	ErrSSH    = "SSH"
	ErrExec   = "EXEC"
	ErrRender = "RENDER"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// It renders as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrExec code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrExec,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewSpawn creates a target-scoped spawn failure.
func NewSpawn(target string, cause error, suggestion string) *Error {
	return &Error{
		Code:       ErrSpawn,
		Message:    fmt.Sprintf("Couldn't start measuring %s", target),
		Suggestion: suggestion,
		Cause:      cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Short returns a single-line form suitable for a status line in the TUI.
func (e *Error) Short() string {
	if e.Cause != nil {
		return e.Message + ": " + util.FirstLine(e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// IsSpawn reports whether err is a spawn failure.
func IsSpawn(err error) bool {
	return IsCode(err, ErrSpawn)
}

// ShortMessage returns a single-line description of any error.
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *Error
	if errors.As(err, &pgErr) {
		return pgErr.Short()
	}
	return util.FirstLine(err.Error())
}

// ExitError carries a process exit code up to main without printing anything extra.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// IsShutdown reports whether err only signals that measurement stopped: a
// cancelled context or a closed stream.
func IsShutdown(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed)
}

// IgnoreShutdown drops shutdown errors from err, which may combine several
// with multierr, and returns the rest.
func IgnoreShutdown(err error) error {
	var kept error
	for _, e := range multierr.Errors(err) {
		if !IsShutdown(e) {
			kept = multierr.Append(kept, e)
		}
	}
	return kept
}
