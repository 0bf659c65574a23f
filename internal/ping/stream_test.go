package ping

import (
	"context"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/exec"
	"github.com/rileyhilliard/pingraph/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linuxOutput = `PING example.com (93.184.216.34) 56(84) bytes of data.
64 bytes from 93.184.216.34: icmp_seq=1 ttl=56 time=23.4 ms
no answer yet for icmp_seq=2
64 bytes from 93.184.216.34: icmp_seq=3 ttl=56 time=1500us
`

func collect(t *testing.T, s Stream) []Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out []Result
	for r := range All(ctx, s) {
		out = append(out, r)
	}
	return out
}

func TestOpen_PingStreamOrderAndExit(t *testing.T) {
	l := &scriptLauncher{stdout: linuxOutput, stderr: "ping: interrupted", code: 1}

	s, err := Open(context.Background(), Options{Kind: KindLinux, Target: "example.com", Launcher: l})
	require.NoError(t, err)

	results := collect(t, s)
	require.Len(t, results, 5)
	assert.Equal(t, Unknown, results[0].Kind)
	assert.Equal(t, Pong, results[1].Kind)
	assert.Equal(t, 23400*time.Microsecond, results[1].Duration)
	assert.Equal(t, Timeout, results[2].Kind)
	assert.Equal(t, 1500*time.Microsecond, results[3].Duration)
	assert.Equal(t, Exited, results[4].Kind)
	assert.Equal(t, 1, results[4].ExitCode)
	assert.Equal(t, "ping: interrupted", results[4].Stderr)

	specs := l.launched()
	require.Len(t, specs, 1)
	assert.Equal(t, "ping", specs[0].Name)
	assert.Equal(t, []string{"-O", "-i", "0.2", "example.com"}, specs[0].Args)
}

func TestPingStream_LongLineIsUnknown(t *testing.T) {
	long := strings.Repeat("a", 200*1024)
	l := &scriptLauncher{stdout: long + "\n64 bytes from 10.0.0.1: icmp_seq=1 ttl=64 time=5.0 ms\n", code: 0}

	s, err := Open(context.Background(), Options{Kind: KindLinux, Target: "h", Launcher: l})
	require.NoError(t, err)

	results := collect(t, s)
	require.Len(t, results, 3)
	assert.Equal(t, Unknown, results[0].Kind)
	assert.Equal(t, Pong, results[1].Kind, "the stream keeps reading after an over-long line")
	assert.Equal(t, 5*time.Millisecond, results[1].Duration)
	assert.Equal(t, Exited, results[2].Kind)
	assert.False(t, l.procs[0].wasKilled())
}

func TestPingStream_NextAfterExitIsEOF(t *testing.T) {
	l := &scriptLauncher{stdout: ""}
	s, err := Open(context.Background(), Options{Kind: KindDarwin, Target: "h", Launcher: l})
	require.NoError(t, err)
	defer s.Close()

	r, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Exited, r.Kind)

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestPingStream_EarlyBreakKillsProcess(t *testing.T) {
	l := &scriptLauncher{stdout: linuxOutput, hold: true}
	s, err := Open(context.Background(), Options{Kind: KindLinux, Target: "h", Launcher: l})
	require.NoError(t, err)

	for r := range All(context.Background(), s) {
		if r.Kind == Pong {
			break
		}
	}

	require.Len(t, l.procs, 1)
	assert.True(t, l.procs[0].wasKilled(), "breaking out of All must kill the child")
}

func TestPingStream_CancelledContext(t *testing.T) {
	l := &scriptLauncher{hold: true}
	s, err := Open(context.Background(), Options{Kind: KindLinux, Target: "h", Launcher: l})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, s.Close())
	assert.True(t, l.procs[0].wasKilled())
}

func TestOpen_SpawnError(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "launcher fails",
			opts: Options{Kind: KindLinux, Target: "h", Launcher: &scriptLauncher{err: io.ErrUnexpectedEOF}},
		},
		{
			name: "unsupported interface",
			opts: Options{Kind: KindWindows, Target: "h", Interface: "eth0", Launcher: &scriptLauncher{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsSpawn(err))
			assert.Contains(t, err.Error(), "h")
		})
	}
}

func TestCommandStream_TimesRuns(t *testing.T) {
	l := &scriptLauncher{stdout: "ok\n"}
	s, err := Open(context.Background(), Options{Kind: KindCommand, Target: "curl -s example.com", Interval: 10 * time.Millisecond, Launcher: l})
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 3; i++ {
		r, err := s.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Pong, r.Kind)
		assert.GreaterOrEqual(t, r.Duration, time.Duration(0))
	}

	specs := l.launched()
	require.Len(t, specs, 3, "one process per run")
	assert.Equal(t, "curl -s example.com", specs[0].Command)
}

func TestCommandStream_FailuresAreTimeouts(t *testing.T) {
	tests := []struct {
		name     string
		launcher *scriptLauncher
	}{
		{"non-zero exit", &scriptLauncher{code: 7}},
		{"launch failure", &scriptLauncher{err: io.ErrClosedPipe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(context.Background(), Options{Kind: KindCommand, Target: "false", Interval: time.Millisecond, Launcher: tt.launcher})
			require.NoError(t, err)

			r, err := s.Next(context.Background())
			require.NoError(t, err)
			assert.Equal(t, Timeout, r.Kind)
		})
	}
}

func TestCommandStream_Paced(t *testing.T) {
	l := &scriptLauncher{}
	s, err := Open(context.Background(), Options{Kind: KindCommand, Target: "true", Interval: 50 * time.Millisecond, Launcher: l})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := s.Next(context.Background())
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond, "first run is immediate, later runs wait one interval")
}

func TestCommandStream_CancelStopsWaiting(t *testing.T) {
	s, err := Open(context.Background(), Options{Kind: KindCommand, Target: "true", Interval: time.Hour, Launcher: &scriptLauncher{}})
	require.NoError(t, err)

	_, err = s.Next(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Next(ctx)
	assert.Error(t, err)
}

func TestCommandStream_RealShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	t.Setenv("SHELL", "/bin/sh")

	s, err := Open(context.Background(), Options{Kind: KindCommand, Target: "sleep 0.05", Interval: 10 * time.Millisecond, Launcher: exec.LocalLauncher{}})
	require.NoError(t, err)
	defer s.Close()

	r, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Pong, r.Kind)
	assert.GreaterOrEqual(t, r.Duration, 50*time.Millisecond)
}

func TestCommandStream_LongOutputIsPong(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	t.Setenv("SHELL", "/bin/sh")

	s, err := Open(context.Background(), Options{
		Kind:     KindCommand,
		Target:   "head -c 200000 /dev/zero | tr '\\000' a; sleep 0.2",
		Interval: 10 * time.Millisecond,
		Launcher: exec.LocalLauncher{},
	})
	require.NoError(t, err)
	defer s.Close()

	r, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Pong, r.Kind)
	assert.GreaterOrEqual(t, r.Duration, 200*time.Millisecond)
}

func TestOpen_WindowsIntervalWarning(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		warn     bool
	}{
		{"custom interval", 200 * time.Millisecond, true},
		{"native rate", time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewBufferLogger()
			s, err := Open(context.Background(), Options{
				Kind:     KindWindows,
				Target:   "h",
				Interval: tt.interval,
				Launcher: &scriptLauncher{},
				Logger:   log,
			})
			require.NoError(t, err)
			defer s.Close()

			warned := false
			for _, m := range log.Snapshot() {
				if m.Level == "warn" && strings.Contains(m.Message, "one request per 1s") {
					warned = true
				}
			}
			assert.Equal(t, tt.warn, warned)
		})
	}
}

func TestDefaultInterval(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, DefaultInterval(KindLinux))
	assert.Equal(t, 500*time.Millisecond, DefaultInterval(KindCommand))
}
