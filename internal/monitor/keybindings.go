package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Window resize steps for the +/- keys.
const (
	ResizeStep = 10 * time.Second
	MinBuffer  = 10 * time.Second
)

// keyMap defines the dashboard key bindings.
type keyMap struct {
	Quit       key.Binding
	Grow       key.Binding
	Shrink     key.Binding
	Export     key.Binding
	ToggleHelp key.Binding
	Close      key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Grow: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "longer window"),
	),
	Shrink: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "shorter window"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export png"),
	),
	ToggleHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close help"),
	),
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Grow, k.Shrink, k.Export, k.ToggleHelp}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Grow, k.Shrink},
		{k.Export},
		{k.ToggleHelp, k.Close, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input and returns the command to run.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, keys.ToggleHelp) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key.Matches(msg, keys.Close) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, keys.Grow):
		return true, m.resizeCmd(ResizeStep)

	case key.Matches(msg, keys.Shrink):
		return true, m.resizeCmd(-ResizeStep)

	case key.Matches(msg, keys.Export):
		return true, m.exportCmd()
	}

	return false, nil
}

// nextBuffer applies a resize step, never going below MinBuffer.
func nextBuffer(current, step time.Duration) time.Duration {
	next := current + step
	if next < MinBuffer {
		next = MinBuffer
	}
	return next
}
