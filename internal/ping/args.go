package ping

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rileyhilliard/pingraph/internal/target"
)

// windowsInterval is the fixed rate of `ping -t`.
const windowsInterval = time.Second

// intervalArg formats an interval in seconds without trailing zeros.
func intervalArg(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Args builds the ping invocation for host on the given platform.
func Args(k Kind, opts Options, host string) (string, []string, error) {
	interval := intervalArg(opts.Interval)
	var args []string

	switch k {
	case KindLinux:
		args = append(args, "-O", "-i", interval)
		args = append(args, familyFlag(opts.Family)...)
		if opts.Interface != "" {
			args = append(args, "-I", opts.Interface)
		}
		return "ping", append(args, host), nil

	case KindBusyBox:
		args = append(args, "-i", interval)
		args = append(args, familyFlag(opts.Family)...)
		if opts.Interface != "" {
			args = append(args, "-I", opts.Interface)
		}
		return "ping", append(args, host), nil

	case KindDarwin, KindBSD:
		name := "ping"
		if opts.Family == target.FamilyV6 || target.IsIPv6(host) {
			name = "ping6"
		}
		args = append(args, "-i"+interval)
		if opts.Interface != "" {
			flag := "-I"
			if k == KindDarwin {
				flag = "-b"
			}
			args = append(args, flag, opts.Interface)
		}
		return name, append(args, host), nil

	case KindWindows:
		if opts.Interface != "" {
			return "", nil, stderrors.New("windows ping can't bind to an interface")
		}
		args = append(args, "-t")
		args = append(args, familyFlag(opts.Family)...)
		return "ping", append(args, host), nil
	}

	return "", nil, fmt.Errorf("no ping arguments for %s", k)
}

func familyFlag(f target.Family) []string {
	switch f {
	case target.FamilyV4:
		return []string{"-4"}
	case target.FamilyV6:
		return []string{"-6"}
	}
	return nil
}
