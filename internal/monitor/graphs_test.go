package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output keeps widths and glyph positions easy to assert on.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name     string
		val      float64
		min, max float64
		want     float64
	}{
		{"at min", 10, 10, 20, 0},
		{"at max", 20, 10, 20, 1},
		{"middle", 15, 10, 20, 0.5},
		{"flat range", 5, 5, 5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, normalizeValue(tt.val, tt.min, tt.max), 1e-9)
		})
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, clampInt(-5, 10))
	assert.Equal(t, 10, clampInt(15, 10))
	assert.Equal(t, 7, clampInt(7, 10))
}

func TestPaddedBounds(t *testing.T) {
	tests := []struct {
		name   string
		b      Bounds
		lo, hi time.Duration
	}{
		{"empty", Bounds{Empty: true}, 0, 0},
		{"ten percent of span", Bounds{Min: 20 * time.Millisecond, Max: 40 * time.Millisecond}, 18 * time.Millisecond, 42 * time.Millisecond},
		{"flat range pads by value", Bounds{Min: 50 * time.Millisecond, Max: 50 * time.Millisecond}, 45 * time.Millisecond, 55 * time.Millisecond},
		{"minimum pad and zero floor", Bounds{Min: 100 * time.Microsecond, Max: 200 * time.Microsecond}, 0, 1200 * time.Microsecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := PaddedBounds(tt.b)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{23400 * time.Microsecond, "23.4ms"},
		{1500 * time.Microsecond, "1.5ms"},
		{250 * time.Microsecond, "0.250ms"},
		{1500 * time.Millisecond, "1.50s"},
		{0, "0.000ms"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLatency(tt.d))
		})
	}
}

func TestYLabels(t *testing.T) {
	labels := yLabels(0, 60*time.Millisecond, 10, false)
	require.Len(t, labels, 10)
	assert.Equal(t, "60.0ms", labels[0])
	assert.Equal(t, "0.000ms", labels[9])

	filled := 0
	for _, l := range labels {
		if l != "" {
			filled++
		}
	}
	assert.Equal(t, yTickCount, filled)

	short := yLabels(0, 60*time.Millisecond, 3, false)
	assert.Equal(t, []string{"60.0ms", "30.0ms", "0.000ms"}, short)

	for _, l := range yLabels(0, 0, 5, true) {
		assert.Empty(t, l)
	}
}

func TestXLabels(t *testing.T) {
	line := xLabels(30*time.Second, 40)
	assert.Len(t, line, 40)
	assert.True(t, strings.HasPrefix(line, "-30s"))
	assert.Contains(t, line, "-15s")
	assert.True(t, strings.HasSuffix(line, "now"))

	assert.Equal(t, "-2.5s", strings.TrimSpace(xLabels(2500*time.Millisecond, 8)))
	assert.Equal(t, "  ", xLabels(30*time.Second, 2))
}

func TestSlotX(t *testing.T) {
	assert.Equal(t, 9, slotX(0, 1, 10))
	assert.Equal(t, 0, slotX(0, 5, 10))
	assert.Equal(t, 9, slotX(4, 5, 10))
	assert.Equal(t, 5, slotX(2, 5, 10))
}

// plotPart returns what follows the y axis on a chart row.
func plotPart(t *testing.T, line string) string {
	t.Helper()
	i := strings.Index(line, yAxisMarker)
	require.GreaterOrEqual(t, i, 0, "row has no axis: %q", line)
	return line[i+len(yAxisMarker):]
}

func chartSnapshot(capacity int, tick int64, series ...SeriesSnapshot) Snapshot {
	snap := Snapshot{
		Series: series,
		Tick:   tick,
		Window: Window{Interval: time.Second, Buffer: time.Duration(capacity) * time.Second},
		Bounds: Bounds{Empty: true},
	}
	for _, s := range series {
		for _, sample := range s.Samples {
			if !sample.Valid {
				continue
			}
			if snap.Bounds.Empty || sample.Value < snap.Bounds.Min {
				snap.Bounds.Min = sample.Value
			}
			if snap.Bounds.Empty || sample.Value > snap.Bounds.Max {
				snap.Bounds.Max = sample.Value
			}
			snap.Bounds.Empty = false
		}
	}
	return snap
}

func TestRenderChartDimensions(t *testing.T) {
	snap := chartSnapshot(10, 3, SeriesSnapshot{Samples: []Sample{ms(10), ms(30), ms(20)}, EndTick: 3})

	for _, simple := range []bool{true, false} {
		out := RenderChart(snap, ChartOptions{Width: 40, Height: 8, Simple: simple})
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 8)
		for _, line := range lines {
			assert.Equal(t, 40, lipgloss.Width(line), "line %q", line)
		}
	}
}

func TestRenderChartTooSmall(t *testing.T) {
	snap := chartSnapshot(10, 1, SeriesSnapshot{Samples: []Sample{ms(10)}, EndTick: 1})
	assert.Empty(t, RenderChart(snap, ChartOptions{Width: 0, Height: 5}))
	assert.Empty(t, RenderChart(snap, ChartOptions{Width: 40, Height: 1}))
	assert.Empty(t, RenderChart(snap, ChartOptions{Width: 5, Height: 5}))
}

func TestRenderChartGapsAreBlank(t *testing.T) {
	snap := chartSnapshot(3, 3, SeriesSnapshot{Samples: []Sample{ms(10), Gap, ms(10)}, EndTick: 3})

	out := RenderChart(snap, ChartOptions{Width: 20, Height: 6, Simple: true})
	assert.Equal(t, 2, strings.Count(out, string(simpleDot)))
}

func TestRenderChartEmpty(t *testing.T) {
	snap := chartSnapshot(10, 4, SeriesSnapshot{Samples: []Sample{Gap, Gap, Gap, Gap}, EndTick: 4})

	out := RenderChart(snap, ChartOptions{Width: 30, Height: 6, Simple: true})
	assert.Len(t, strings.Split(out, "\n"), 6)
	assert.NotContains(t, out, string(simpleDot))
	assert.Contains(t, out, "now")
}

func TestRenderChartNewestOnRightEdge(t *testing.T) {
	snap := chartSnapshot(5, 2, SeriesSnapshot{Samples: []Sample{ms(10), ms(20)}, EndTick: 2})

	out := RenderChart(snap, ChartOptions{Width: 20, Height: 6, Simple: true})
	lines := strings.Split(out, "\n")

	found := false
	for _, line := range lines[:len(lines)-1] {
		plot := plotPart(t, line)
		if strings.HasSuffix(plot, string(simpleDot)) {
			found = true
		}
	}
	assert.True(t, found, "newest sample should sit on the right edge:\n%s", out)
}

func TestRenderChartExitedSeriesLags(t *testing.T) {
	snap := chartSnapshot(5, 5, SeriesSnapshot{Samples: []Sample{ms(10)}, EndTick: 3})

	out := RenderChart(snap, ChartOptions{Width: 20, Height: 6, Simple: true})
	lines := strings.Split(out, "\n")

	col := -1
	for _, line := range lines[:len(lines)-1] {
		plot := plotPart(t, line)
		if i := strings.Index(plot, string(simpleDot)); i >= 0 {
			col = len([]rune(plot[:i]))
		}
	}
	plotWidth := len([]rune(plotPart(t, lines[0])))
	// Slot 2 of 5 is the middle of the plot.
	assert.Equal(t, slotX(2, 5, plotWidth), col)
}

func TestRenderChartBraille(t *testing.T) {
	snap := chartSnapshot(20, 20, SeriesSnapshot{
		Samples: []Sample{ms(10), ms(50), ms(20), ms(40), ms(30)},
		EndTick: 20,
	})

	out := RenderChart(snap, ChartOptions{Width: 40, Height: 8})
	dots := 0
	for _, r := range out {
		if r > brailleBase && r <= brailleBase+0xFF {
			dots++
		}
	}
	assert.Positive(t, dots)
	assert.Contains(t, out, "54.0ms")
}

func TestRenderChartMultipleSeries(t *testing.T) {
	snap := chartSnapshot(4, 4,
		SeriesSnapshot{Samples: []Sample{ms(10), ms(10), ms(10), ms(10)}, EndTick: 4},
		SeriesSnapshot{Samples: []Sample{ms(90), ms(90), ms(90), ms(90)}, EndTick: 4},
	)

	out := RenderChart(snap, ChartOptions{Width: 30, Height: 10, Simple: true})
	rowsWithDots := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, string(simpleDot)) {
			rowsWithDots++
		}
	}
	assert.Equal(t, 2, rowsWithDots)
}
