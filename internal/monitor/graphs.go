package monitor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// simpleDot marks one sample per cell in simple graphics mode.
const simpleDot = '•'

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

// Axis layout.
const (
	yTickCount  = 7
	boundsPad   = 0.10
	minPad      = time.Millisecond
	axisGap     = " "
	yAxisMarker = "┤"
)

// ChartOptions controls how RenderChart draws a snapshot.
type ChartOptions struct {
	// Width and Height are the total size including axis labels.
	Width  int
	Height int
	// Simple draws one dot per sample instead of braille lines.
	Simple bool
	// Colors are assigned to series in order and repeat when exhausted.
	Colors []lipgloss.Color
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// PaddedBounds widens b by 10% of its span on each side so lines never sit
// on the frame. A flat range is padded by 10% of its value, at least 1ms.
// The lower bound never goes below zero.
func PaddedBounds(b Bounds) (lo, hi time.Duration) {
	if b.Empty {
		return 0, 0
	}
	pad := time.Duration(float64(b.Span()) * boundsPad)
	if pad <= 0 {
		pad = time.Duration(float64(b.Max) * boundsPad)
	}
	if pad < minPad {
		pad = minPad
	}
	lo = b.Min - pad
	if lo < 0 {
		lo = 0
	}
	return lo, b.Max + pad
}

// FormatLatency renders a duration the way the axis and header show it.
func FormatLatency(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
}

// plotCell is one terminal cell of the plot area.
type plotCell struct {
	bits  rune
	color int
}

// plotGrid collects dots from every series before styling.
type plotGrid struct {
	cells  [][]plotCell
	width  int
	height int
	simple bool
}

func newPlotGrid(width, height int, simple bool) *plotGrid {
	g := &plotGrid{width: width, height: height, simple: simple}
	g.cells = make([][]plotCell, height)
	for i := range g.cells {
		g.cells[i] = make([]plotCell, width)
		for j := range g.cells[i] {
			g.cells[i][j].color = -1
		}
	}
	return g
}

// dotsWide and dotsHigh are the addressable resolution.
func (g *plotGrid) dotsWide() int {
	if g.simple {
		return g.width
	}
	return g.width * 2
}

func (g *plotGrid) dotsHigh() int {
	if g.simple {
		return g.height
	}
	return g.height * 4
}

// set lights the dot at (x, y), y counted from the bottom.
func (g *plotGrid) set(x, y, color int) {
	if x < 0 || y < 0 || x >= g.dotsWide() || y >= g.dotsHigh() {
		return
	}
	if g.simple {
		cell := &g.cells[g.height-1-y][x]
		cell.bits = simpleDot
		cell.color = color
		return
	}
	row := g.height - 1 - y/4
	subRow := 3 - y%4
	cell := &g.cells[row][x/2]
	cell.bits |= rune(1) << brailleDots[subRow][x%2]
	cell.color = color
}

// line draws a straight run of dots between two points.
func (g *plotGrid) line(x0, y0, x1, y1, color int) {
	if g.simple {
		g.set(x0, y0, color)
		g.set(x1, y1, color)
		return
	}
	steps := x1 - x0
	if dy := y1 - y0; abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		g.set(x0, y0, color)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		g.set(x, y, color)
	}
}

func (g *plotGrid) render(colors []lipgloss.Color) []string {
	lines := make([]string, g.height)
	for r, row := range g.cells {
		var b strings.Builder
		for _, cell := range row {
			switch {
			case cell.color < 0 && g.simple:
				b.WriteRune(' ')
			case cell.color < 0:
				b.WriteRune(brailleBase)
			default:
				ch := cell.bits
				if !g.simple {
					ch |= brailleBase
				}
				style := lipgloss.NewStyle().Foreground(seriesColor(colors, cell.color))
				b.WriteString(style.Render(string(ch)))
			}
		}
		lines[r] = b.String()
	}
	return lines
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// slotX maps a slot position in the window to a dot column. The newest slot
// sits on the right edge.
func slotX(pos, capacity, dots int) int {
	if capacity <= 1 {
		return dots - 1
	}
	return int(math.Round(float64(pos) * float64(dots-1) / float64(capacity-1)))
}

// RenderChart draws every series of snap into a width x height block: y-axis
// labels on the left, the plot, and start/mid/end labels underneath. Gaps in
// a series are left blank, and series that stopped early end where their
// last tick falls.
func RenderChart(snap Snapshot, opts ChartOptions) string {
	if opts.Width <= 0 || opts.Height <= 0 {
		return ""
	}

	lo, hi := PaddedBounds(snap.Bounds)
	labels := yLabels(lo, hi, opts.Height-1, snap.Bounds.Empty)
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}

	plotHeight := opts.Height - 1
	plotWidth := opts.Width - labelWidth - lipgloss.Width(axisGap+yAxisMarker)
	if plotHeight < 1 || plotWidth < 1 {
		return ""
	}

	grid := newPlotGrid(plotWidth, plotHeight, opts.Simple)
	if !snap.Bounds.Empty {
		capacity := snap.Window.Capacity()
		for i, s := range snap.Series {
			plotSeries(grid, s, snap.Tick, capacity, lo, hi, i)
		}
	}
	rows := grid.render(opts.Colors)

	axisStyle := lipgloss.NewStyle().Foreground(ColorTextMuted)
	var b strings.Builder
	for r, row := range rows {
		label := fmt.Sprintf("%*s", labelWidth, labels[r])
		b.WriteString(LabelStyle.Render(label))
		b.WriteString(axisGap)
		b.WriteString(axisStyle.Render(yAxisMarker))
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(" ", labelWidth+lipgloss.Width(axisGap+yAxisMarker)))
	b.WriteString(LabelStyle.Render(xLabels(snap.Window.Buffer, plotWidth)))
	return b.String()
}

func plotSeries(g *plotGrid, s SeriesSnapshot, tick int64, capacity int, lo, hi time.Duration, color int) {
	lag := int(tick - s.EndTick)
	prevX, prevY, havePrev := 0, 0, false
	for i, sample := range s.Samples {
		pos := capacity - 1 - lag - (len(s.Samples) - 1 - i)
		if pos < 0 || !sample.Valid {
			havePrev = false
			continue
		}
		x := slotX(pos, capacity, g.dotsWide())
		norm := normalizeValue(float64(sample.Value), float64(lo), float64(hi))
		y := clampInt(int(math.Round(norm*float64(g.dotsHigh()-1))), g.dotsHigh()-1)
		if havePrev {
			g.line(prevX, prevY, x, y, color)
		} else {
			g.set(x, y, color)
		}
		prevX, prevY, havePrev = x, y, true
	}
}

// yLabels returns one label per plot row, top first. Up to seven rows carry
// a value; the rest are blank.
func yLabels(lo, hi time.Duration, rows int, empty bool) []string {
	labels := make([]string, max(rows, 0))
	if rows <= 0 || empty {
		return labels
	}
	ticks := min(yTickCount, rows)
	for k := 0; k < ticks; k++ {
		row := 0
		if ticks > 1 {
			row = int(math.Round(float64(k) * float64(rows-1) / float64(ticks-1)))
		}
		frac := 1.0
		if rows > 1 {
			frac = 1 - float64(row)/float64(rows-1)
		}
		labels[row] = FormatLatency(lo + time.Duration(frac*float64(hi-lo)))
	}
	return labels
}

// xLabels lays out the window start, midpoint, and "now" across width.
func xLabels(buffer time.Duration, width int) string {
	start := "-" + formatWindow(buffer)
	mid := "-" + formatWindow(buffer/2)
	end := "now"

	if width < len(start)+len(mid)+len(end)+2 {
		if width < len(start) {
			return strings.Repeat(" ", max(width, 0))
		}
		return fmt.Sprintf("%-*s", width, start)
	}
	line := []rune(strings.Repeat(" ", width))
	copy(line, []rune(start))
	midAt := width/2 - len(mid)/2
	copy(line[midAt:], []rune(mid))
	copy(line[width-len(end):], []rune(end))
	return string(line)
}

func formatWindow(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
