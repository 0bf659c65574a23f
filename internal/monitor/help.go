package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	helpGroupStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(8)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// helpGroups names the FullHelp columns in order.
var helpGroups = []string{"Window", "Export", "General"}

// renderHelpOverlay renders the key bindings and the current sampling
// settings in a box centered over the dashboard.
func (m Model) renderHelpOverlay() string {
	lines := []string{helpTitleStyle.Render("Keyboard Shortcuts")}

	for i, group := range keys.FullHelp() {
		if i < len(helpGroups) {
			lines = append(lines, helpGroupStyle.Render(helpGroups[i]))
		}
		lines = append(lines, helpBindings(group)...)
	}

	lines = append(lines, helpGroupStyle.Render("Sampling"))
	lines = append(lines, helpSetting("every", FormatLatency(m.snap.Window.Interval)))
	lines = append(lines, helpSetting("window", formatWindow(m.buffer)))
	if m.opts.ExportDir != "" {
		lines = append(lines, helpSetting("saves", m.opts.ExportDir))
	}

	lines = append(lines, "", LabelStyle.Render("Press ? or esc to close"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBoxStyle.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}

func helpBindings(group []key.Binding) []string {
	out := make([]string, 0, len(group))
	for _, b := range group {
		h := b.Help()
		out = append(out, helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
	}
	return out
}

func helpSetting(name, value string) string {
	return helpKeyStyle.Render(name) + helpDescStyle.Render(value)
}
