package exec

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/pingraph/internal/util"
	"github.com/rileyhilliard/pingraph/pkg/sshutil"
	"golang.org/x/crypto/ssh"
)

// RemoteLauncher starts processes on an SSH host, so targets are measured
// from that host's point of view.
type RemoteLauncher struct {
	Pool *Pool
	Host string
}

// Launch starts spec on the remote host through its login shell.
func (l RemoteLauncher) Launch(ctx context.Context, spec Spec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := l.Pool.Get(l.Host)
	if err != nil {
		return nil, err
	}

	tail := &tailBuffer{}
	session, stdout, err := client.Start(remoteCommand(spec), tail)
	if err != nil {
		return nil, err
	}
	return &remoteProcess{session: session, stdout: stdout, stderr: tail}, nil
}

// remoteCommand renders spec as a command line for a POSIX login shell.
func remoteCommand(spec Spec) string {
	cmd := spec.String()
	if spec.IsShell() {
		cmd = "sh -c " + util.ShellQuote(spec.Command)
	}
	return strings.Join(localeEnv, " ") + " " + cmd
}

type remoteProcess struct {
	session sshutil.StreamSession
	stdout  io.Reader
	stderr  *tailBuffer
}

func (p *remoteProcess) Stdout() io.Reader { return p.stdout }

func (p *remoteProcess) StderrTail() string { return p.stderr.String() }

// Kill asks the server to signal the process and closes the channel. Servers
// that ignore signals still hang up on the process once the channel closes.
func (p *remoteProcess) Kill() error {
	_ = p.session.Signal(ssh.SIGKILL)
	err := p.session.Close()
	if stderrors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// exitStatuser is satisfied by *ssh.ExitError.
type exitStatuser interface {
	ExitStatus() int
}

func (p *remoteProcess) Wait() (int, error) {
	err := p.session.Wait()
	if err == nil {
		return 0, nil
	}
	var status exitStatuser
	if stderrors.As(err, &status) {
		return status.ExitStatus(), nil
	}
	var missing *ssh.ExitMissingError
	if stderrors.As(err, &missing) || stderrors.Is(err, io.EOF) {
		return -1, nil
	}
	return -1, err
}
