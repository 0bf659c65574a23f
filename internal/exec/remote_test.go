package exec

import (
	"context"
	stderrors "errors"
	"io"
	"testing"
	"time"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/pkg/sshutil"
	sshtest "github.com/rileyhilliard/pingraph/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockPool(m *sshtest.MockClient) *Pool {
	return NewPool(time.Second).WithDialer(func(string, time.Duration) (sshutil.SSHClient, error) {
		return m, nil
	})
}

func TestRemoteCommand(t *testing.T) {
	assert.Equal(t, "LANG=C LC_ALL=C ping -O -i 0.2 example.com",
		remoteCommand(Spec{Name: "ping", Args: []string{"-O", "-i", "0.2", "example.com"}}))
	assert.Equal(t, "LANG=C LC_ALL=C sh -c 'echo it'\\''s'",
		remoteCommand(Spec{Command: "echo it's"}))
}

func TestRemoteLauncher_StreamsLines(t *testing.T) {
	m := sshtest.NewMockClient("vantage")
	m.SetCommandResponse(`^LANG=C LC_ALL=C ping `, sshtest.CommandResponse{
		Stdout: []byte("PING example.com\n64 bytes from example.com: icmp_seq=1 ttl=57 time=10.1 ms\n"),
	})

	s, err := Start(context.Background(), RemoteLauncher{Pool: mockPool(m), Host: "vantage"},
		Spec{Label: "example.com", Name: "ping", Args: []string{"example.com"}})
	require.NoError(t, err)

	lines := readAll(t, s)
	assert.Len(t, lines, 2)
	code, _ := s.Close()
	assert.Equal(t, 0, code)
}

func TestRemoteLauncher_CloseKillsHeldCommand(t *testing.T) {
	m := sshtest.NewMockClient("vantage")
	m.SetCommandResponse(`ping`, sshtest.CommandResponse{Stdout: []byte("first\n"), Hold: true})

	s, err := Start(context.Background(), RemoteLauncher{Pool: mockPool(m), Host: "vantage"},
		Spec{Name: "ping", Args: []string{"host"}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	line, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	code, _ := s.Close()
	assert.Equal(t, -1, code)
	assert.True(t, m.Sessions()[0].Killed())

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestRemoteLauncher_NonZeroExit(t *testing.T) {
	m := sshtest.NewMockClient("vantage")
	m.SetCommandResponse(`false`, sshtest.CommandResponse{Stderr: []byte("boom\n"), ExitCode: 4})

	code, stderr, err := Run(context.Background(), RemoteLauncher{Pool: mockPool(m), Host: "vantage"}, Spec{Command: "false"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, code)
	assert.Equal(t, "boom", stderr)
}

func TestRemoteLauncher_DialFailureIsSpawnError(t *testing.T) {
	pool := NewPool(time.Second).WithDialer(func(string, time.Duration) (sshutil.SSHClient, error) {
		return nil, errors.New(errors.ErrSSH, "Can't reach 'vantage'", "")
	})

	_, err := Start(context.Background(), RemoteLauncher{Pool: pool, Host: "vantage"}, Spec{Label: "t", Name: "ping"})
	require.Error(t, err)
	assert.True(t, errors.IsSpawn(err))
	assert.True(t, errors.IsCode(stderrors.Unwrap(err), errors.ErrSSH))
}
