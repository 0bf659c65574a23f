package sshutil

import (
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

// Client is an SSH connection to a vantage host.
type Client struct {
	*ssh.Client
	Host    string // The alias or user@host:port given on the command line
	Address string // The resolved host:port
}

// Dial connects to host, which may be an ~/.ssh/config alias, a hostname,
// user@hostname, or hostname:port. Settings from ~/.ssh/config apply when
// the alias matches.
func Dial(host string, timeout time.Duration) (*Client, error) {
	settings := resolveSSHSettings(host)

	config, err := buildSSHConfig(settings, timeout)
	if err != nil {
		var pgErr *errors.Error
		if stderrors.As(err, &pgErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := settings.address()
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	// The handshake has no timeout of its own.
	_ = conn.SetDeadline(time.Now().Add(timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.New(errors.ErrSSH, hostKeyErr.Error(), hostKeyErr.Suggestion())
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			suggestionForHandshakeError(err, settings.encryptedKeys))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the alias used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

// Alive sends a keepalive request and reports whether the server answered.
func (c *Client) Alive() bool {
	if c == nil || c.Client == nil {
		return false
	}
	_, _, err := c.Client.SendRequest("keepalive@openssh.com", true, nil)
	return err == nil
}

func (c *Client) newSSHSession() (*ssh.Session, error) {
	return c.Client.NewSession()
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Is SSH running on that host? Try: ssh <host>"
	case strings.Contains(errStr, "no route to host"), strings.Contains(errStr, "network is unreachable"):
		return "Can't route to the host. Check your network connection."
	case strings.Contains(errStr, "timeout"):
		return "Connection timed out. The host might be offline or behind a firewall."
	case strings.Contains(errStr, "no such host"):
		return "The name didn't resolve. Check the alias in ~/.ssh/config."
	}
	return "Make sure the host is reachable: ssh <host>"
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "unable to authenticate"), strings.Contains(errStr, "no supported methods"):
		if len(encryptedKeys) > 0 {
			return "Your key(s) are encrypted. Add them to the agent:\n" + sshAddCommands(encryptedKeys)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(errStr, "key is unknown"):
		return "The host isn't in known_hosts yet. Connect once with: ssh <host>"
	case strings.Contains(errStr, "host key"):
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}
