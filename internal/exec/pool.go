package exec

import (
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/pingraph/pkg/sshutil"
)

// DialFunc opens an SSH connection to an alias.
type DialFunc func(alias string, timeout time.Duration) (sshutil.SSHClient, error)

// Pool keeps SSH connections to vantage hosts alive so every target pinged
// through the same host shares one connection.
type Pool struct {
	mu          sync.Mutex
	connections map[string]*poolEntry
	timeout     time.Duration
	dial        DialFunc
}

// poolEntry holds a connection and its metadata.
type poolEntry struct {
	client   sshutil.SSHClient
	platform string
	lastUsed time.Time
}

// NewPool creates a new SSH connection pool.
func NewPool(timeout time.Duration) *Pool {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Pool{
		connections: make(map[string]*poolEntry),
		timeout:     timeout,
		dial: func(alias string, timeout time.Duration) (sshutil.SSHClient, error) {
			return sshutil.Dial(alias, timeout)
		},
	}
}

// WithDialer replaces how the pool connects. Used by tests.
func (p *Pool) WithDialer(dial DialFunc) *Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dial = dial
	return p
}

// Get retrieves an existing connection for the given alias, or creates a new one.
// If the connection is broken, it is replaced with a fresh connection.
func (p *Pool) Get(alias string) (sshutil.SSHClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.connections[alias]; ok && entry.client != nil {
		if entry.client.Alive() {
			entry.lastUsed = time.Now()
			return entry.client, nil
		}
		_ = entry.client.Close()
		delete(p.connections, alias)
	}

	client, err := p.dial(alias, p.timeout)
	if err != nil {
		return nil, err
	}
	p.connections[alias] = &poolEntry{
		client:   client,
		lastUsed: time.Now(),
	}
	return client, nil
}

// Platform returns the remote host's `uname -s` output, detecting it once
// per connection.
func (p *Pool) Platform(alias string) (string, error) {
	client, err := p.Get(alias)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	entry := p.connections[alias]
	platform := entry.platform
	p.mu.Unlock()
	if platform != "" {
		return platform, nil
	}

	stdout, _, code, err := client.Exec("uname -s")
	switch {
	case err != nil:
		return "", err
	case code != 0:
		// Windows OpenSSH has no uname.
		platform = "Windows_NT"
	default:
		platform = strings.TrimSpace(string(stdout))
	}

	p.mu.Lock()
	if e, ok := p.connections[alias]; ok {
		e.platform = platform
	}
	p.mu.Unlock()
	return platform, nil
}

// Close closes all connections in the pool and clears it.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for alias, entry := range p.connections {
		if entry.client != nil {
			_ = entry.client.Close()
		}
		delete(p.connections, alias)
	}
}

// Size returns the number of connections in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.connections)
}
