// Package exec owns child processes for pingraph: spawning them locally or on
// an SSH vantage host, reading their stdout line by line, and guaranteeing
// that every process is killed and reaped when its session closes.
package exec

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/rileyhilliard/pingraph/internal/util"
)

// localeEnv forces untranslated, dot-decimal output from ping and friends.
var localeEnv = []string{"LANG=C", "LC_ALL=C"}

// Spec describes one child process.
type Spec struct {
	// Label names the target in errors and logs.
	Label string
	// Name and Args run a binary directly, located on PATH.
	Name string
	Args []string
	// Command runs through a shell instead of Name/Args when set.
	Command string
}

// IsShell reports whether s runs a command string through a shell.
func (s Spec) IsShell() bool {
	return s.Command != ""
}

// String renders s as a single shell-safe command line.
func (s Spec) String() string {
	if s.IsShell() {
		return s.Command
	}
	return util.ShellJoin(s.Name, s.Args)
}

// Process is a started child whose stdout can be read line by line.
type Process interface {
	// Stdout returns the process's standard output.
	Stdout() io.Reader
	// Kill terminates the process and anything it spawned. It is safe to call
	// after the process has exited.
	Kill() error
	// Wait reaps the process and returns its exit code. Killed processes
	// report -1.
	Wait() (int, error)
	// StderrTail returns the last few lines the process wrote to stderr.
	StderrTail() string
}

// Launcher starts processes somewhere: on this machine or a remote host.
type Launcher interface {
	Launch(ctx context.Context, spec Spec) (Process, error)
}

// shellArgv returns the argv used to run a command string through a shell.
func shellArgv(command string) []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C", command}
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return []string{shell, "-c", command}
}
