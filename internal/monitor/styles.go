package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard palette. Truecolor values degrade through lipgloss on smaller
// terminals.
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

// DefaultSeriesColors fill in for targets without a configured color, in
// target order.
var DefaultSeriesColors = []lipgloss.Color{
	ColorGraph,
	ColorAccent,
	ColorHealthy,
	ColorWarning,
	lipgloss.Color("#BF40FF"),
	lipgloss.Color("#4D7CFF"),
	lipgloss.Color("#FF6B35"),
	lipgloss.Color("#F8F32B"),
}

// Loss fractions at which a series indicator turns amber, then red.
const (
	WarningLoss  = 0.05
	CriticalLoss = 0.20
)

var (
	FooterStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Padding(0, 1)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorTextPrimary)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorCritical)

	borderStyle       = lipgloss.NewStyle().Foreground(ColorBorder)
	sectionTitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	sectionValueStyle = lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)
)

// Legend indicators per series status.
const (
	StatusActiveGlyph = "◉"
	StatusExitedGlyph = "◌"
	StatusFailedGlyph = "✗"
)

// seriesColor picks the color for series i, cycling through colors or the
// defaults when colors is empty.
func seriesColor(colors []lipgloss.Color, i int) lipgloss.Color {
	if len(colors) == 0 {
		colors = DefaultSeriesColors
	}
	return colors[i%len(colors)]
}

// LossColor maps a loss fraction to healthy, warning or critical.
func LossColor(loss float64) lipgloss.Color {
	switch {
	case loss >= CriticalLoss:
		return ColorCritical
	case loss >= WarningLoss:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// StatusGlyph returns the legend indicator for a series. Active series are
// colored by their loss.
func StatusGlyph(s SeriesSnapshot) (string, lipgloss.Style) {
	switch s.Status {
	case StatusExited:
		return StatusExitedGlyph, ErrorStyle
	case StatusFailed:
		return StatusFailedGlyph, ErrorStyle
	default:
		return StatusActiveGlyph, lipgloss.NewStyle().Foreground(LossColor(s.Stats.Loss()))
	}
}

// SectionHeader draws the top border of the legend box with the title on
// the left and value on the right:
//
//	╭─ title ──────────── value ╮
func SectionHeader(title, value string, width int) string {
	width = max(width, 10)
	// "╭─ " + title + " " on the left, " " + value + " ╮" on the right.
	used := 3 + lipgloss.Width(title) + 1 + 1 + lipgloss.Width(value) + 2
	fill := strings.Repeat("─", max(width-used, 1))

	return borderStyle.Render("╭─ ") +
		sectionTitleStyle.Render(title) +
		borderStyle.Render(" "+fill+" ") +
		sectionValueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter draws the bottom border of the legend box.
func SectionFooter(width int) string {
	width = max(width, 2)
	return borderStyle.Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine pads content to the box's inner width between side
// borders.
func SectionContentLine(content string, width int) string {
	width = max(width, 4)
	pad := max(width-4-lipgloss.Width(content), 0)
	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + borderStyle.Render("│")
}
