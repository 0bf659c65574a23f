package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/pingraph/internal/logger"
)

func TestChanged(t *testing.T) {
	prev := validConfig()
	next := validConfig()
	assert.Empty(t, Changed(prev, next))

	next.Buffer = 60
	next.Colors = []string{"12"}
	next.Restart.Max = 1
	assert.Equal(t, []string{"buffer", "colors", "restart"}, Changed(prev, next))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "buffer: 30\n")
	current, err := Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	log := logger.NewBufferLogger()
	go func() {
		done <- Watch(ctx, path, current, log, func(_, next *Config) {
			changes <- next
		})
	}()

	// Give the watcher time to register before writing.
	var next *Config
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("buffer: 45\n"), 0644)
		select {
		case next = <-changes:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 45, next.Buffer)

	// Invalid values are rejected without a callback.
	require.NoError(t, os.WriteFile(path, []byte("buffer: 0\n"), 0644))
	require.Eventually(t, func() bool { return log.HasLevel("warn") }, 5*time.Second, 10*time.Millisecond)

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("buffer: 90\n"), 0644))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	for len(changes) > 0 {
		assert.NotEqual(t, 90, (<-changes).Buffer)
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", ConfigFileName), DefaultConfig(), nil, func(_, _ *Config) {})
	assert.Error(t, err)
}
