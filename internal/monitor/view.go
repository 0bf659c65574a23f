package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/util"
)

// Rows taken by everything except the legend and chart: the section header,
// the section footer, and the key hints.
const chromeRows = 3

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	legend := m.renderLegend()
	for _, line := range legend {
		b.WriteString(SectionContentLine(line, m.width))
		b.WriteString("\n")
	}
	b.WriteString(SectionFooter(m.width))
	b.WriteString("\n")

	chartHeight := m.height - chromeRows - len(legend)
	if chart := RenderChart(m.snap, ChartOptions{
		Width:  m.width,
		Height: chartHeight,
		Simple: m.opts.Simple,
		Colors: m.opts.Colors,
	}); chart != "" {
		b.WriteString(chart)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title with the target count and window length.
func (m Model) renderHeader() string {
	n := len(m.snap.Series)
	noun := util.Pluralize(n, "target", "targets")
	value := fmt.Sprintf("%d %s · %s", n, noun, formatWindow(m.buffer))
	if active := m.snap.Active(); active < n {
		value = fmt.Sprintf("%d/%d %s · %s", active, n, noun, formatWindow(m.buffer))
	}
	return SectionHeader(m.opts.Title, value, m.width)
}

// renderLegend returns one line per series: status, label and stats.
func (m Model) renderLegend() []string {
	labelWidth := 0
	for _, s := range m.snap.Series {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}

	lines := make([]string, 0, len(m.snap.Series))
	for i, s := range m.snap.Series {
		glyph, glyphStyle := StatusGlyph(s)
		labelStyle := lipgloss.NewStyle().
			Foreground(seriesColor(m.opts.Colors, i)).
			Bold(true).
			Width(labelWidth)

		line := glyphStyle.Render(glyph) + " " + labelStyle.Render(s.Label) + "  "
		switch s.Status {
		case StatusFailed:
			line += ErrorStyle.Render("failed: " + errors.ShortMessage(s.Err))
		case StatusExited:
			line += formatStats(s.Stats) + "  " + ErrorStyle.Render(exitText(s))
		default:
			line += formatStats(s.Stats)
			if s.Restarts > 0 {
				line += "  " + LabelStyle.Render(fmt.Sprintf("restarts %d", s.Restarts))
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func formatStats(st Stats) string {
	last := "-"
	if st.Last.Valid {
		last = FormatLatency(st.Last.Value)
	}

	parts := []string{statPart("last", last)}
	if st.Replies > 0 {
		parts = append(parts,
			statPart("min", FormatLatency(st.Min)),
			statPart("max", FormatLatency(st.Max)),
			statPart("avg", FormatLatency(st.Avg)),
			statPart("jitter", FormatLatency(st.Jitter)),
			statPart("p95", FormatLatency(st.P95)),
		)
	}

	loss := st.Loss()
	lossStyle := lipgloss.NewStyle().Foreground(LossColor(loss))
	parts = append(parts, LabelStyle.Render("loss ")+lossStyle.Render(fmt.Sprintf("%.1f%%", loss*100)))
	return strings.Join(parts, "  ")
}

func statPart(name, value string) string {
	return LabelStyle.Render(name+" ") + ValueStyle.Render(value)
}

func exitText(s SeriesSnapshot) string {
	text := fmt.Sprintf("exited (code %d)", s.ExitCode)
	if stderr := strings.TrimSpace(s.Stderr); stderr != "" {
		text += ": " + util.FirstLine(stderr)
	}
	return text
}

// renderFooter renders the key hints and the latest status message.
func (m Model) renderFooter() string {
	footer := m.help.View(keys)
	if m.status != "" {
		footer += "  " + ValueStyle.Render(m.status)
	}
	return FooterStyle.Render(footer)
}
