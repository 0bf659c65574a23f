package monitor

import (
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/ping"
	"github.com/rileyhilliard/pingraph/internal/util"
)

// PrintPlain writes one line per event until events is closed. It is used
// when stdout is not a terminal. Unknown lines are skipped.
func PrintPlain(w io.Writer, labels []string, events <-chan Event) error {
	width := 0
	for _, l := range labels {
		width = max(width, len(l))
	}

	for ev := range events {
		line, ok := plainLine(ev)
		if !ok {
			continue
		}
		label := fmt.Sprintf("target %d", ev.Target)
		if ev.Target >= 0 && ev.Target < len(labels) {
			label = labels[ev.Target]
		}
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, label, line); err != nil {
			return err
		}
	}
	return nil
}

func plainLine(ev Event) (string, bool) {
	if ev.Err != nil {
		return "error: " + errors.ShortMessage(ev.Err), true
	}
	r := ev.Result
	switch r.Kind {
	case ping.Pong:
		return FormatLatency(r.Duration), true
	case ping.Timeout:
		return "timeout", true
	case ping.Exited:
		msg := fmt.Sprintf("exited (code %d)", r.ExitCode)
		if stderr := strings.TrimSpace(r.Stderr); stderr != "" {
			msg += ": " + util.FirstLine(stderr)
		}
		if ev.Restarting {
			msg += ", restarting"
		}
		return msg, true
	default:
		return "", false
	}
}
