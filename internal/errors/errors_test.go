package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestNew(t *testing.T) {
	err := New(ErrSpawn, "ping binary not found", "Install iputils-ping")

	assert.Equal(t, ErrSpawn, err.Code)
	assert.Equal(t, "ping binary not found", err.Message)
	assert.Equal(t, "Install iputils-ping", err.Suggestion)
	assert.Nil(t, err.Cause)
	assert.Nil(t, err.Unwrap())
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name: "basic error formatting",
			err:  New(ErrConfig, "Invalid configuration", "Check .pingraph.yaml syntax"),
			expectedParts: []string{
				"✗ Invalid configuration",
				"Check .pingraph.yaml syntax",
			},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrExec, "Command failed", ""),
			expectedParts: []string{"Command failed"},
			notExpected:   []string{"\n\n  \n"},
		},
		{
			name: "error with cause",
			err:  WrapWithCode(fmt.Errorf("exec: \"ping\": executable file not found in $PATH"), ErrSpawn, "Couldn't start ping", "Install ping"),
			expectedParts: []string{
				"Couldn't start ping",
				"executable file not found",
				"Install ping",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("broken pipe")
	wrapped := Wrap(cause, "Reading ping output failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrExec, wrapped.Code, "Wrap should default to ErrExec code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestNewSpawn(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewSpawn("example.com", cause, "Check ping permissions")

	assert.True(t, IsSpawn(err))
	assert.Contains(t, err.Message, "example.com")
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("worker 2: %w", err)
	assert.True(t, IsSpawn(wrapped))
	assert.False(t, IsSpawn(errors.New("plain")))
	assert.False(t, IsSpawn(nil))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain multi-line", errors.New("first\nsecond"), "first"},
		{"structured without cause", New(ErrSpawn, "ping missing", "install it"), "ping missing"},
		{"structured with cause", WrapWithCode(errors.New("exit status 2\nmore"), ErrSpawn, "ping failed", ""), "ping failed: exit status 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortMessage(tt.err))
		})
	}
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp: i/o timeout"),
		ErrSSH,
		"Cannot connect to vantage host",
		"Check the --via alias in ~/.ssh/config",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Cannot connect to vantage host")
}

func TestExitError(t *testing.T) {
	tests := []struct {
		code    int
		wantMsg string
	}{
		{0, "exit code 0"},
		{1, "exit code 1"},
		{137, "exit code 137"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			err := NewExitError(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{"ExitError returns code", NewExitError(42), 42, true},
		{"wrapped ExitError", fmt.Errorf("run: %w", NewExitError(3)), 3, true},
		{"standard error", errors.New("standard error"), 0, false},
		{"nil error", nil, 0, false},
		{"structured Error", New(ErrExec, "test", ""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestIsShutdown(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, true},
		{"wrapped canceled", fmt.Errorf("worker: %w", context.Canceled), true},
		{"eof", io.EOF, true},
		{"closed pipe", io.ErrClosedPipe, true},
		{"closed file", &os.PathError{Op: "read", Path: "|0", Err: os.ErrClosed}, true},
		{"deadline", context.DeadlineExceeded, false},
		{"spawn", NewSpawn("a", errors.New("no such file"), ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsShutdown(tt.err))
		})
	}
}

func TestIgnoreShutdown(t *testing.T) {
	broken := errors.New("terminal went away")

	assert.NoError(t, IgnoreShutdown(nil))
	assert.NoError(t, IgnoreShutdown(context.Canceled))
	assert.NoError(t, IgnoreShutdown(multierr.Combine(io.EOF, context.Canceled)))
	assert.Equal(t, broken, IgnoreShutdown(broken))

	kept := IgnoreShutdown(multierr.Combine(context.Canceled, broken, io.EOF))
	require.Error(t, kept)
	assert.Equal(t, []error{broken}, multierr.Errors(kept))
}
