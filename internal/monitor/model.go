package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/logger"
)

// DefaultRefresh is how often the dashboard redraws from the aggregator.
const DefaultRefresh = 250 * time.Millisecond

// Default terminal size until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// SnapshotSource is what the dashboard draws from. *Aggregator satisfies it.
type SnapshotSource interface {
	Snapshot() Snapshot
}

// Exporter writes an image of a snapshot and returns the file path.
type Exporter func(snap Snapshot, dir string, colors []lipgloss.Color, now time.Time) (string, error)

// Options configures the dashboard.
type Options struct {
	Title   string
	Colors  []lipgloss.Color
	Simple  bool
	Refresh time.Duration
	// Resize receives the new buffer length when the user changes the window.
	Resize    chan<- time.Duration
	ExportDir string
	Exporter  Exporter
	Logger    logger.Logger
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "pingraph"
	}
	if o.Refresh <= 0 {
		o.Refresh = DefaultRefresh
	}
	if o.Exporter == nil {
		o.Exporter = ExportPNG
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Model is the Bubble Tea model for the latency graph.
type Model struct {
	source SnapshotSource
	cancel context.CancelFunc
	opts   Options

	snap     Snapshot
	buffer   time.Duration
	width    int
	height   int
	showHelp bool
	quitting bool
	// failed is set when the dashboard quit because no target could start.
	failed bool
	status string
	help   help.Model
}

// refreshMsg signals a periodic redraw.
type refreshMsg time.Time

// statusMsg replaces the footer status line.
type statusMsg string

// exportedMsg carries the result of an export.
type exportedMsg struct {
	path string
	err  error
}

// NewModel creates a dashboard over source. cancel stops measurement and is
// called when the user quits.
func NewModel(source SnapshotSource, cancel context.CancelFunc, opts Options) Model {
	opts = opts.withDefaults()
	snap := source.Snapshot()
	return Model{
		source: source,
		cancel: cancel,
		opts:   opts,
		snap:   snap,
		buffer: snap.Window.Buffer,
		width:  defaultWidth,
		height: defaultHeight,
		help:   help.New(),
	}
}

// Init starts the redraw timer.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if m.quitting {
			m.stop()
		}
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case refreshMsg:
		m.snap = m.source.Snapshot()
		m.buffer = m.snap.Window.Buffer
		if m.snap.AllFailed() {
			m.failed = true
			m.quitting = true
			m.stop()
			return m, tea.Quit
		}
		return m, m.refreshCmd()

	case statusMsg:
		m.status = string(msg)

	case exportedMsg:
		if msg.err != nil {
			m.status = errors.ShortMessage(msg.err)
			m.opts.Logger.Error("export failed: %v", msg.err)
		} else {
			m.status = "saved " + msg.path
			m.opts.Logger.Info("exported %s", msg.path)
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Failed reports whether the dashboard quit because no target could start.
func (m Model) Failed() bool {
	return m.failed
}

// FinalFrame renders the dashboard as it last looked, for printing after
// the program has left the alternate screen.
func (m Model) FinalFrame() string {
	return m.renderDashboard()
}

// LastSnapshot returns the snapshot drawn most recently.
func (m Model) LastSnapshot() Snapshot {
	return m.snap
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// refreshCmd returns a command that sends a refresh after the redraw interval.
func (m Model) refreshCmd() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// resizeCmd asks the aggregator for a new window length.
func (m *Model) resizeCmd(step time.Duration) tea.Cmd {
	if m.opts.Resize == nil {
		return nil
	}
	next := nextBuffer(m.buffer, step)
	if next == m.buffer {
		return nil
	}
	m.buffer = next
	m.opts.Logger.Info("window resize requested: %s", next)

	resize := m.opts.Resize
	return func() tea.Msg {
		select {
		case resize <- next:
			return statusMsg("window " + formatWindow(next))
		case <-time.After(time.Second):
			return statusMsg("resize ignored")
		}
	}
}

// exportCmd writes the current snapshot to a PNG.
func (m *Model) exportCmd() tea.Cmd {
	snap := m.snap
	opts := m.opts
	return func() tea.Msg {
		path, err := opts.Exporter(snap, opts.ExportDir, opts.Colors, opts.Now())
		return exportedMsg{path: path, err: err}
	}
}
