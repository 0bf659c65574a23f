package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Build info, set by main from -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		v := displayVersion()
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, strings.TrimPrefix(v, "v"))
			return
		}
		fmt.Fprintf(out, "pingraph %s\n", v)
		fmt.Fprintf(out, "  commit  %s\n", commit)
		fmt.Fprintf(out, "  built   %s\n", date)
		fmt.Fprintf(out, "  go      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
}

// displayVersion returns the ldflags version with a v prefix. Binaries built
// with plain `go install` have no ldflags and fall back to the module version.
func displayVersion() string {
	v := version
	if v == "dev" {
		if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if v == "" || v == "dev" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// SetVersionInfo records build info passed in from main.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
