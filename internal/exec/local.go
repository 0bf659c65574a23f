package exec

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on output copying once the process
// itself is gone.
const waitDelay = 2 * time.Second

// LocalLauncher starts processes on this machine.
type LocalLauncher struct {
	// Env is appended to the inherited environment after the locale overrides.
	Env []string
}

// Launch starts spec as a local child process.
func (l LocalLauncher) Launch(_ context.Context, spec Spec) (Process, error) {
	argv := []string{spec.Name}
	argv = append(argv, spec.Args...)
	if spec.IsShell() {
		argv = shellArgv(spec.Command)
	}

	// Cancellation is handled by Session.Close, which kills the whole
	// process group rather than just the direct child.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(append(os.Environ(), localeEnv...), l.Env...)
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	tail := &tailBuffer{}
	cmd.Stderr = tail

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &localProcess{cmd: cmd, stdout: stdout, stderr: tail}, nil
}

type localProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr *tailBuffer
}

func (p *localProcess) Stdout() io.Reader { return p.stdout }

func (p *localProcess) StderrTail() string { return p.stderr.String() }

func (p *localProcess) Kill() error {
	err := killProcessGroup(p.cmd)
	if stderrors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *localProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if stderrors.Is(err, exec.ErrWaitDelay) {
		return p.cmd.ProcessState.ExitCode(), nil
	}
	return -1, err
}
