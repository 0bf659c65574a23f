// Package monitor measures latency to several targets at once and draws it
// as a live terminal graph.
//
// # Architecture
//
// Three stages run concurrently and talk over channels:
//
//	Orchestrator - one worker per target reading a ping.Stream, emitting Events
//	Aggregator   - single owner of the per-target ring buffers, advanced by a ticker
//	Model        - the Bubble Tea model that redraws from Aggregator snapshots
//
// The aggregator is the only writer of sample history. Each tick it pushes
// the newest result received for every active target, or a gap when none
// arrived, then publishes an immutable Snapshot. Readers never lock.
//
// # Series lifecycle
//
// A series starts Active. When its process exits the last sample is pushed
// on the following tick and the series becomes Exited: its samples stay on
// screen and drift left as the window advances. A series whose process could
// not be started is Failed and never holds samples. When every series has
// failed the dashboard quits on its own.
//
// # Rendering
//
// RenderChart draws all series into a shared braille canvas (or plain dots
// in simple mode) with y-axis labels spanning the padded min and max of the
// window. ExportPNG writes the same window as an image.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	+ / -       - Lengthen or shorten the window by 10s
//	e           - Export a PNG of the current window
//	?           - Toggle help overlay
//	Esc         - Close help
package monitor
