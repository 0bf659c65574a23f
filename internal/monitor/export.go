package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/multierr"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

// Export image size in pixels.
const (
	exportWidth  = 1200
	exportHeight = 500
)

// ExportFileName is the PNG name for an export taken at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("pingraph-%s.png", t.Format("20060102-150405"))
}

// ExportPNG renders the window in snap as a PNG in dir and returns its path.
func ExportPNG(snap Snapshot, dir string, colors []lipgloss.Color, now time.Time) (string, error) {
	if snap.Bounds.Empty {
		return "", errors.New(errors.ErrRender,
			"Nothing to export yet",
			"Wait for at least one reply before exporting.")
	}

	graph := buildExportChart(snap, colors)

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrRender,
			fmt.Sprintf("Couldn't create export directory %s", dir),
			"Check export_dir in your config.")
	}

	path := filepath.Join(dir, ExportFileName(now))
	if err := writeChart(graph, path); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrRender,
			fmt.Sprintf("Couldn't write %s", path),
			"Check that the export directory is writable.")
	}
	return path, nil
}

func writeChart(graph chart.Chart, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return graph.Render(chart.PNG, f)
}

// buildExportChart lays every series out on a shared time axis in seconds
// relative to the newest tick. Each unbroken run of replies becomes its own
// line so gaps stay visible.
func buildExportChart(snap Snapshot, colors []lipgloss.Color) chart.Chart {
	lo, hi := PaddedBounds(snap.Bounds)
	capacity := snap.Window.Capacity()
	interval := snap.Window.Interval.Seconds()

	var series []chart.Series
	for i, s := range snap.Series {
		style := chart.Style{
			StrokeColor: exportColor(colors, i),
			StrokeWidth: 2,
			DotColor:    exportColor(colors, i),
			DotWidth:    2,
		}
		named := false
		for _, run := range replyRuns(s, snap.Tick, capacity) {
			cs := chart.ContinuousSeries{Style: style}
			if !named {
				cs.Name = s.Label
				named = true
			}
			for _, p := range run {
				cs.XValues = append(cs.XValues, -float64(capacity-1-p.pos)*interval)
				cs.YValues = append(cs.YValues, float64(p.value)/float64(time.Millisecond))
			}
			series = append(series, cs)
		}
	}

	graph := chart.Chart{
		Width:  exportWidth,
		Height: exportHeight,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		XAxis: chart.XAxis{
			Name: "Seconds",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: -float64(capacity-1) * interval,
				Max: 0,
			},
		},
		YAxis: chart.YAxis{
			Name: "Latency (ms)",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
			Range: &chart.ContinuousRange{
				Min: float64(lo) / float64(time.Millisecond),
				Max: float64(hi) / float64(time.Millisecond),
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}
	return graph
}

type runPoint struct {
	pos   int
	value time.Duration
}

// replyRuns splits a series into runs of consecutive valid samples, with
// each sample placed at its slot position in the window.
func replyRuns(s SeriesSnapshot, tick int64, capacity int) [][]runPoint {
	lag := int(tick - s.EndTick)
	var runs [][]runPoint
	var cur []runPoint
	for i, sample := range s.Samples {
		pos := capacity - 1 - lag - (len(s.Samples) - 1 - i)
		if pos < 0 || !sample.Valid {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, runPoint{pos: pos, value: sample.Value})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// exportColor converts a #RRGGBB series color. ANSI palette colors fall back
// to the chart's default palette.
func exportColor(colors []lipgloss.Color, i int) drawing.Color {
	c := string(seriesColor(colors, i))
	if strings.HasPrefix(c, "#") && len(c) == 7 {
		return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
	}
	return chart.GetDefaultColor(i)
}
