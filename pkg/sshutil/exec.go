package sshutil

import (
	"bytes"
	stderrors "errors"
	"io"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

const reconnectHint = "The connection may have dropped. Restart pingraph to reconnect."

// Exec runs cmd to completion and returns its output and exit status. A
// command that ran and failed returns its exit status with a nil error; -1
// means it never ran.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.openSession()
	if err != nil {
		return nil, nil, -1, err
	}
	defer session.Close()

	var outBuf, errBuf bytes.Buffer
	session.Stdout = &outBuf
	session.Stderr = &errBuf

	var exitErr *ssh.ExitError
	switch err := session.Run(cmd); {
	case err == nil:
		return outBuf.Bytes(), errBuf.Bytes(), 0, nil
	case stderrors.As(err, &exitErr):
		return outBuf.Bytes(), errBuf.Bytes(), exitErr.ExitStatus(), nil
	default:
		return nil, nil, -1, c.runError(err, cmd)
	}
}

// Start launches cmd and returns while it runs. Stdout streams through the
// returned reader and stderr is copied to the given writer. The caller must
// Wait on or Close the session.
func (c *Client) Start(cmd string, stderr io.Writer) (StreamSession, io.Reader, error) {
	session, err := c.openSession()
	if err != nil {
		return nil, nil, err
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't read output from "+c.Host, reconnectHint)
	}
	session.Stderr = stderr

	if err := session.Start(cmd); err != nil {
		session.Close()
		return nil, nil, c.runError(err, cmd)
	}
	return session, stdout, nil
}

func (c *Client) openSession() (*ssh.Session, error) {
	session, err := c.newSSHSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't open a session on "+c.Host, reconnectHint)
	}
	return session, nil
}

func (c *Client) runError(err error, cmd string) error {
	return errors.WrapWithCode(err, errors.ErrExec,
		"Couldn't run '"+cmd+"' on "+c.Host,
		"Check that the command exists on that host.")
}
