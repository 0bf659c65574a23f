package ping

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind selects the output grammar and argv layout for a platform's ping, or
// the generic timed-command mode.
type Kind int

const (
	// KindLinux is iputils ping.
	KindLinux Kind = iota
	// KindBusyBox is BusyBox ping, common on Alpine and embedded Linux.
	KindBusyBox
	// KindDarwin is macOS ping.
	KindDarwin
	// KindBSD is FreeBSD, OpenBSD, NetBSD and DragonFly ping.
	KindBSD
	// KindWindows is ping.exe.
	KindWindows
	// KindCommand times whole runs of an arbitrary shell command.
	KindCommand
)

var kindNames = map[Kind]string{
	KindLinux:   "linux",
	KindBusyBox: "busybox",
	KindDarwin:  "darwin",
	KindBSD:     "bsd",
	KindWindows: "windows",
	KindCommand: "command",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ruleAction is what a matching rule produces.
type ruleAction int

const (
	actionPong ruleAction = iota
	actionTimeout
	actionIgnore
)

// rule matches a line by prefix, substring, or regex. Exactly one matcher is set.
type rule struct {
	prefix   string
	contains string
	re       *regexp.Regexp
	action   ruleAction
}

func (r rule) match(line string) ([]string, bool) {
	switch {
	case r.prefix != "":
		return nil, strings.HasPrefix(line, r.prefix)
	case r.contains != "":
		return nil, strings.Contains(strings.ToLower(line), r.contains)
	case r.re != nil:
		m := r.re.FindStringSubmatch(line)
		return m, m != nil
	}
	return nil, false
}

// replyRE captures the value and optional unit after "time=" or "time<".
// Units: ms (default), msec, us, usec, µs, ns, s, sec.
var replyRE = regexp.MustCompile(`(?i)time[=<]\s*(\d+(?:[.,]\d+)?)\s*(msec|ms|usec|us|µs|ns|sec|s)?\b`)

var (
	linuxRules = []rule{
		{prefix: "PING ", action: actionIgnore},
		{contains: "no answer yet", action: actionTimeout},
		{contains: "unreachable", action: actionTimeout},
		{re: replyRE, action: actionPong},
	}
	busyboxRules = []rule{
		{prefix: "PING ", action: actionIgnore},
		{contains: "unreachable", action: actionTimeout},
		{re: replyRE, action: actionPong},
	}
	bsdRules = []rule{
		{prefix: "PING ", action: actionIgnore},
		{prefix: "Request timeout", action: actionTimeout},
		{contains: "unreachable", action: actionTimeout},
		{re: replyRE, action: actionPong},
	}
	windowsRules = []rule{
		{prefix: "Pinging ", action: actionIgnore},
		{contains: "timed out", action: actionTimeout},
		{contains: "failure", action: actionTimeout},
		{contains: "unreachable", action: actionTimeout},
		{re: replyRE, action: actionPong},
	}
)

func rulesFor(k Kind) []rule {
	switch k {
	case KindLinux:
		return linuxRules
	case KindBusyBox:
		return busyboxRules
	case KindDarwin, KindBSD:
		return bsdRules
	case KindWindows:
		return windowsRules
	default:
		return nil
	}
}

// Classify turns one raw output line into Pong, Timeout or Unknown. Rules are
// tried in order and the first match wins. It never fails: anything it cannot
// read, including a reply with an unparsable number, is Unknown.
func Classify(k Kind, line string) Result {
	for _, r := range rulesFor(k) {
		m, ok := r.match(line)
		if !ok {
			continue
		}
		switch r.action {
		case actionTimeout:
			return TimeoutResult(line)
		case actionIgnore:
			return UnknownResult(line)
		case actionPong:
			d, err := ParseDuration(m[1], m[2])
			if err != nil {
				return UnknownResult(line)
			}
			// "time<1ms" reports an upper bound, which is taken as the value.
			return PongResult(d, line)
		}
	}
	return UnknownResult(line)
}

var unitScale = map[string]float64{
	"":     float64(time.Millisecond),
	"ms":   float64(time.Millisecond),
	"msec": float64(time.Millisecond),
	"us":   float64(time.Microsecond),
	"usec": float64(time.Microsecond),
	"µs":   float64(time.Microsecond),
	"ns":   float64(time.Nanosecond),
	"s":    float64(time.Second),
	"sec":  float64(time.Second),
}

// ParseDuration converts a printed number and unit into a time.Duration.
// A decimal comma is accepted. An empty unit means milliseconds.
func ParseDuration(num, unit string) (time.Duration, error) {
	scale, ok := unitScale[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit %q", unit)
	}
	v, err := strconv.ParseFloat(strings.Replace(num, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", num, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative duration %q", num)
	}
	return time.Duration(math.Round(v * scale)), nil
}
