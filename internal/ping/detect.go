package ping

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/exec"
)

// KindForPlatform maps a GOOS value or `uname -s` output to a grammar. Linux
// maps to KindLinux; use Detect to tell iputils from BusyBox.
func KindForPlatform(platform string) (Kind, error) {
	p := strings.ToLower(strings.TrimSpace(platform))
	switch {
	case p == "linux":
		return KindLinux, nil
	case p == "darwin":
		return KindDarwin, nil
	case p == "freebsd", p == "openbsd", p == "netbsd", p == "dragonfly":
		return KindBSD, nil
	case p == "windows", p == "windows_nt",
		strings.HasPrefix(p, "mingw"), strings.HasPrefix(p, "msys"), strings.HasPrefix(p, "cygwin"):
		return KindWindows, nil
	}
	return 0, errors.New(errors.ErrSpawn,
		fmt.Sprintf("Unsupported platform %q", platform),
		"Use --cmd to time an arbitrary command instead.")
}

// Detect picks the grammar for ping on a platform. On Linux it runs
// `ping -V` through l: iputils identifies itself, anything else that answers
// is treated as BusyBox.
func Detect(ctx context.Context, platform string, l exec.Launcher) (Kind, error) {
	kind, err := KindForPlatform(platform)
	if err != nil || kind != KindLinux {
		return kind, err
	}

	spec := exec.Spec{Label: "ping", Name: "ping", Args: []string{"-V"}}
	var out strings.Builder
	code, stderr, err := exec.Run(ctx, l, spec, &out)
	if err != nil {
		return 0, err
	}
	// Remote shells report a missing ping as exit 127.
	if err := exec.NotFoundError(spec, stderr, code); err != nil {
		return 0, err
	}
	stdout := out.String()
	if strings.Contains(stdout, "iputils") {
		return KindLinux, nil
	}
	if strings.TrimSpace(stdout) == "" && strings.TrimSpace(stderr) == "" {
		return 0, errors.New(errors.ErrSpawn,
			"Couldn't identify the installed ping",
			"Install iputils-ping, or use --cmd to time a command instead.")
	}
	return KindBusyBox, nil
}

// DetectLocal picks the grammar for this machine's ping.
func DetectLocal(ctx context.Context) (Kind, error) {
	return Detect(ctx, runtime.GOOS, exec.LocalLauncher{})
}
