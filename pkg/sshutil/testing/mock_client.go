package testing

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rileyhilliard/pingraph/pkg/sshutil"
	"golang.org/x/crypto/ssh"
)

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
	// Hold keeps a started command running until it is signalled or closed,
	// after Stdout has been streamed.
	Hold bool
}

// MockClient simulates an SSH connection for testing. Commands are matched
// against registered responses, exact string first, then as regex patterns.
type MockClient struct {
	mu       sync.Mutex
	host     string
	closed   bool
	commands map[string]CommandResponse
	started  []string
	sessions []*MockSession
}

var _ sshutil.SSHClient = (*MockClient)(nil)

// NewMockClient creates a mock SSH client with no registered commands.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:     host,
		commands: make(map[string]CommandResponse),
	}
}

// SetCommandResponse registers a canned response for a command pattern.
// The pattern can be an exact string or a regex pattern.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[pattern] = resp
}

func (m *MockClient) lookup(cmd string) (CommandResponse, bool) {
	if resp, ok := m.commands[cmd]; ok {
		return resp, true
	}
	for pattern, resp := range m.commands {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			return resp, true
		}
	}
	return CommandResponse{}, false
}

// Exec returns the registered response for cmd, or exit code 127.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	resp, ok := m.lookup(cmd)
	if !ok {
		return nil, []byte("command not found\n"), 127, nil
	}
	return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
}

// Start streams the registered response's stdout through a pipe.
func (m *MockClient) Start(cmd string, stderr io.Writer) (sshutil.StreamSession, io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, errors.New("connection closed")
	}
	resp, ok := m.lookup(cmd)
	if !ok {
		resp = CommandResponse{Stderr: []byte("command not found\n"), ExitCode: 127}
	}
	if resp.Error != nil {
		return nil, nil, resp.Error
	}
	m.started = append(m.started, cmd)

	pr, pw := io.Pipe()
	s := &MockSession{resp: resp, stdout: pw, done: make(chan struct{})}
	m.sessions = append(m.sessions, s)
	go s.run(stderr)
	return s, pr, nil
}

// Alive reports whether Close has not been called.
func (m *MockClient) Alive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// Started returns every command passed to Start, in order.
func (m *MockClient) Started() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.started...)
}

// Sessions returns every session created by Start, in order.
func (m *MockClient) Sessions() []*MockSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockSession(nil), m.sessions...)
}

// MockSession is a running mock command.
type MockSession struct {
	resp   CommandResponse
	stdout *io.PipeWriter

	once     sync.Once
	doneOnce sync.Once
	done     chan struct{}
	mu       sync.Mutex
	killed   bool
	finished bool
}

func (s *MockSession) run(stderr io.Writer) {
	if stderr != nil && len(s.resp.Stderr) > 0 {
		_, _ = stderr.Write(s.resp.Stderr)
	}
	for _, line := range strings.SplitAfter(string(s.resp.Stdout), "\n") {
		if line == "" {
			continue
		}
		if _, err := s.stdout.Write([]byte(line)); err != nil {
			return
		}
	}
	if s.resp.Hold {
		<-s.done
	}
	s.finish()
}

func (s *MockSession) finish() {
	s.once.Do(func() {
		s.mu.Lock()
		s.finished = true
		s.mu.Unlock()
		_ = s.stdout.Close()
	})
}

// Wait blocks until the command finishes and reports its exit status the
// way *ssh.Session does.
func (s *MockSession) Wait() error {
	select {
	case <-s.done:
	default:
		if s.resp.Hold {
			<-s.done
		}
	}
	s.mu.Lock()
	killed := s.killed
	s.mu.Unlock()
	if killed {
		return &ssh.ExitMissingError{}
	}
	if s.resp.ExitCode != 0 {
		return &ExitStatusError{Code: s.resp.ExitCode}
	}
	return nil
}

// ExitStatusError mirrors *ssh.ExitError for a non-zero remote exit.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string { return "Process exited with status " + strconv.Itoa(e.Code) }

// ExitStatus returns the remote exit code.
func (e *ExitStatusError) ExitStatus() int { return e.Code }

// Signal stops a held command.
func (s *MockSession) Signal(_ ssh.Signal) error {
	return s.Close()
}

// Close ends the command and closes its stdout.
func (s *MockSession) Close() error {
	s.mu.Lock()
	if !s.finished {
		s.killed = true
	}
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
	s.finish()
	return nil
}

// Killed reports whether the session was closed before it finished.
func (s *MockSession) Killed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed
}
