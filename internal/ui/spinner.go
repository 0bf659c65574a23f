package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Braille frames, matching the graph's glyphs.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerTick = 80 * time.Millisecond

// Spinner animates a one-line status while pingraph waits on something slow,
// such as connecting to a vantage host. It writes to stderr by default so
// stdout stays clean for the graph and plain output.
type Spinner struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	frame   int
	started time.Time
	drawn   int // runes on the line from the last frame

	stop chan struct{}
	done chan struct{}
}

// NewSpinner returns a stopped spinner showing label.
func NewSpinner(label string) *Spinner {
	return &Spinner{label: label, out: os.Stderr}
}

// SetOutput redirects the spinner.
func (s *Spinner) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

// SetLabel changes the text shown next to the spinner.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// Start draws the first frame and animates until Finish. Calling it twice
// has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawFrameLocked()
	s.mu.Unlock()

	go s.animate(s.stop, s.done)
}

// Finish stops the animation and replaces it with a final line marked as
// done or failed, followed by the elapsed time.
func (s *Spinner) Finish(ok bool) {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop = nil

	symbol, style := SymbolComplete, SuccessStyle
	if !ok {
		symbol, style = SymbolFail, ErrorStyle
	}
	s.clearLocked()
	fmt.Fprintf(s.out, "%s %s %s\n", style.Render(symbol), s.label,
		MutedStyle.Render(formatElapsed(time.Since(s.started))))
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawFrameLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawFrameLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	glyph := lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame])
	line := glyph + " " + s.label + "..."

	s.clearLocked()
	_, _ = io.WriteString(s.out, line)
	s.drawn = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.drawn == 0 {
		return
	}
	_, _ = io.WriteString(s.out, "\r"+strings.Repeat(" ", s.drawn)+"\r")
	s.drawn = 0
}

// formatElapsed renders short waits with two decimals, e.g. "0.05s", "1.2s".
func formatElapsed(d time.Duration) string {
	if secs := d.Seconds(); secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
