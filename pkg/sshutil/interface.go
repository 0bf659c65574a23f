package sshutil

import (
	"io"

	"golang.org/x/crypto/ssh"
)

// SSHClient is a connection to a vantage host. *Client and the mock in
// sshutil/testing implement it.
type SSHClient interface {
	// Exec runs cmd to completion. A non-zero exit status comes back with a
	// nil error; -1 means the command never ran.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Start launches cmd and streams its stdout through the returned reader.
	// Stderr is copied to the given writer.
	Start(cmd string, stderr io.Writer) (StreamSession, io.Reader, error)

	// Alive reports whether the connection still answers keepalives.
	Alive() bool

	Close() error

	// GetHost returns the alias the connection was dialed with.
	GetHost() string
}

// StreamSession is a running remote command. *ssh.Session satisfies it.
type StreamSession interface {
	Wait() error
	Signal(sig ssh.Signal) error
	Close() error
}
