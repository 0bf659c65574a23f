package monitor

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

type staticSource struct {
	snap Snapshot
}

func (s *staticSource) Snapshot() Snapshot { return s.snap }

func dashboardSnapshot() Snapshot {
	return Snapshot{
		Tick:   5,
		Window: Window{Interval: time.Second, Buffer: 30 * time.Second},
		Bounds: Bounds{Min: 10 * time.Millisecond, Max: 30 * time.Millisecond},
		Series: []SeriesSnapshot{
			{
				Index:   0,
				Label:   "example.com",
				Status:  StatusActive,
				Samples: []Sample{ms(10), Gap, ms(30)},
				EndTick: 5,
				Stats:   ComputeStats([]Sample{ms(10), Gap, ms(30)}),
			},
			{
				Index:    1,
				Label:    "10.0.0.1",
				Status:   StatusExited,
				Samples:  []Sample{ms(20)},
				EndTick:  2,
				Stats:    ComputeStats([]Sample{ms(20)}),
				ExitCode: 2,
				Stderr:   "ping: sendto: No route to host\n",
			},
			{
				Index:  2,
				Label:  "nope.invalid",
				Status: StatusFailed,
				Err:    errors.NewSpawn("nope.invalid", stderrors.New("no such host"), ""),
			},
		},
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestNewModel(t *testing.T) {
	src := &staticSource{snap: dashboardSnapshot()}
	m := NewModel(src, nil, Options{})

	assert.Equal(t, "pingraph", m.opts.Title)
	assert.Equal(t, DefaultRefresh, m.opts.Refresh)
	assert.Equal(t, 30*time.Second, m.buffer)
	assert.Equal(t, defaultWidth, m.width)
	assert.Equal(t, defaultHeight, m.height)
	assert.NotNil(t, m.Init())
}

func TestModelView(t *testing.T) {
	src := &staticSource{snap: dashboardSnapshot()}
	m := NewModel(src, nil, Options{Title: "pingraph"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})

	view := m.View()
	assert.Contains(t, view, "pingraph")
	assert.Contains(t, view, "1/3 targets · 30s")
	assert.Contains(t, view, "example.com")
	assert.Contains(t, view, "last 30.0ms")
	assert.Contains(t, view, "loss 33.3%")
	assert.Contains(t, view, "exited (code 2): ping: sendto: No route to host")
	assert.Contains(t, view, "failed: Couldn't start measuring nope.invalid: no such host")
	assert.Contains(t, view, "now")
	assert.LessOrEqual(t, lipgloss.Height(view), 20)
}

func TestModelQuit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", keyRune('q')},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			m := NewModel(&staticSource{snap: dashboardSnapshot()}, cancel, Options{})
			m, cmd := update(t, m, tt.msg)

			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, m.View())
			assert.Contains(t, m.FinalFrame(), "example.com")
			assert.Error(t, ctx.Err(), "quitting cancels measurement")
			assert.False(t, m.Failed())
		})
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m := NewModel(&staticSource{snap: dashboardSnapshot()}, nil, Options{})

	m, _ = update(t, m, keyRune('?'))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	assert.Contains(t, m.View(), "export png")
	assert.Contains(t, m.View(), "Sampling")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)

	m, _ = update(t, m, keyRune('?'))
	m, _ = update(t, m, keyRune('?'))
	assert.False(t, m.showHelp)
}

func TestModelResize(t *testing.T) {
	resize := make(chan time.Duration, 1)
	m := NewModel(&staticSource{snap: dashboardSnapshot()}, nil, Options{Resize: resize})

	m, cmd := update(t, m, keyRune('+'))
	require.NotNil(t, cmd)
	assert.Equal(t, 40*time.Second, m.buffer)
	assert.Equal(t, statusMsg("window 40s"), cmd())
	assert.Equal(t, 40*time.Second, <-resize)

	m, _ = update(t, m, statusMsg("window 40s"))
	assert.Equal(t, "window 40s", m.status)
}

func TestModelResizeFloor(t *testing.T) {
	snap := dashboardSnapshot()
	snap.Window.Buffer = MinBuffer
	resize := make(chan time.Duration, 1)
	m := NewModel(&staticSource{snap: snap}, nil, Options{Resize: resize})

	m, cmd := update(t, m, keyRune('-'))
	assert.Nil(t, cmd)
	assert.Equal(t, MinBuffer, m.buffer)
}

func TestModelResizeWithoutChannel(t *testing.T) {
	m := NewModel(&staticSource{snap: dashboardSnapshot()}, nil, Options{})
	_, cmd := update(t, m, keyRune('+'))
	assert.Nil(t, cmd)
}

func TestModelRefresh(t *testing.T) {
	src := &staticSource{snap: dashboardSnapshot()}
	m := NewModel(src, nil, Options{})

	src.snap.Tick = 9
	src.snap.Window.Buffer = 50 * time.Second
	m, cmd := update(t, m, refreshMsg(time.Now()))

	assert.NotNil(t, cmd)
	assert.Equal(t, int64(9), m.LastSnapshot().Tick)
	assert.Equal(t, 50*time.Second, m.buffer)
}

func TestModelQuitsWhenAllFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &staticSource{snap: Snapshot{Series: []SeriesSnapshot{
		{Label: "a", Status: StatusFailed},
		{Label: "b", Status: StatusFailed},
	}}}
	m := NewModel(src, cancel, Options{})
	m, cmd := update(t, m, refreshMsg(time.Now()))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Failed())
	assert.Error(t, ctx.Err())
}

func TestModelExport(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var got Snapshot
	var gotDir string
	exporter := func(snap Snapshot, dir string, _ []lipgloss.Color, at time.Time) (string, error) {
		got, gotDir = snap, dir
		assert.Equal(t, now, at)
		return dir + "/" + ExportFileName(at), nil
	}

	m := NewModel(&staticSource{snap: dashboardSnapshot()}, nil, Options{
		ExportDir: "/tmp/graphs",
		Exporter:  exporter,
		Now:       func() time.Time { return now },
	})

	m, cmd := update(t, m, keyRune('e'))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, int64(5), got.Tick)
	assert.Equal(t, "/tmp/graphs", gotDir)

	m, _ = update(t, m, msg)
	assert.Equal(t, "saved /tmp/graphs/pingraph-20260301-120000.png", m.status)
}

func TestModelExportError(t *testing.T) {
	m := NewModel(&staticSource{snap: dashboardSnapshot()}, nil, Options{})
	m, _ = update(t, m, exportedMsg{err: errors.New(errors.ErrRender, "Nothing to export yet", "")})
	assert.Equal(t, "Nothing to export yet", m.status)
}
