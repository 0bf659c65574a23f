package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rileyhilliard/pingraph/internal/config"
	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/pkg/sshutil"
)

// graphFlags holds the root command flags. Values only override the config
// file when the flag was set on the command line.
type graphFlags struct {
	cmd      bool
	interval float64
	buffer   int
	ipv4     bool
	ipv6     bool
	iface    string
	via      string
	colors   []string
	simple   bool
	restart  int
	config   string
	debug    bool
	noColor  bool
	clear    bool
}

var flags graphFlags

var rootCmd = &cobra.Command{
	Use:   "pingraph [hosts or commands...]",
	Short: "Graph ping latency to several hosts in the terminal",
	Long: `pingraph pings one or more hosts and draws their latency as a live graph.

With --cmd, each argument is a shell command instead. It runs once per
interval and the graph shows how long each run took.

Targets can also come from the 'targets' list in .pingraph.yaml.

Examples:
  pingraph example.com 1.1.1.1
  pingraph -4 -b 60 example.com
  pingraph --via bastion 10.0.0.1 10.0.0.2
  pingraph --cmd "curl -s https://example.com" "dig example.com"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return graphCommand(cmd, args)
	},
}

func init() {
	bindGraphFlags(rootCmd.Flags(), &flags)
	rootCmd.MarkFlagsMutuallyExclusive("ipv4", "ipv6")
	_ = rootCmd.RegisterFlagCompletionFunc("via", completeSSHHosts)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "config file (default: .pingraph.yaml, searched upward)")
	pf.BoolVar(&flags.debug, "debug", false, "write debug entries to the log file")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colors")
}

// bindGraphFlags registers the graph flags on fs.
func bindGraphFlags(fs *pflag.FlagSet, f *graphFlags) {
	fs.BoolVar(&f.cmd, "cmd", false, "treat arguments as shell commands and graph their run time")
	fs.Float64VarP(&f.interval, "watch-interval", "n", 0, "seconds between pings (default 0.2, or 0.5 with --cmd)")
	fs.IntVarP(&f.buffer, "buffer", "b", config.DefaultBuffer, "seconds of history to show")
	fs.BoolVarP(&f.ipv4, "ipv4", "4", false, "resolve hosts to IPv4 addresses only")
	fs.BoolVarP(&f.ipv6, "ipv6", "6", false, "resolve hosts to IPv6 addresses only")
	fs.StringVarP(&f.iface, "interface", "i", "", "interface or source address to ping from")
	fs.StringVar(&f.via, "via", "", "SSH host alias to ping from")
	fs.StringSliceVarP(&f.colors, "color", "c", nil, "series colors in target order (#RRGGBB or 0-255)")
	fs.BoolVarP(&f.simple, "simple-graphics", "s", false, "draw dots instead of braille")
	fs.IntVar(&f.restart, "restart", 0, "restart a ping that exits, up to N times")
	fs.BoolVar(&f.clear, "clear", false, "clear the graph from the terminal on exit")
}

// completeSSHHosts offers aliases from ~/.ssh/config for --via.
func completeSSHHosts(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	hosts, err := sshutil.ParseSSHConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return sshutil.CompletionCandidates(hosts, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// applyFlags copies flags that were set on the command line over cfg, and
// replaces the configured targets when arguments were given.
func applyFlags(fs *pflag.FlagSet, f graphFlags, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Targets = append([]string(nil), args...)
	}
	if fs.Changed("cmd") {
		cfg.Cmd = f.cmd
	}
	if fs.Changed("watch-interval") {
		cfg.WatchInterval = f.interval
	}
	if fs.Changed("buffer") {
		cfg.Buffer = f.buffer
	}
	if fs.Changed("ipv4") {
		cfg.IPv4 = f.ipv4
		if f.ipv4 {
			cfg.IPv6 = false
		}
	}
	if fs.Changed("ipv6") {
		cfg.IPv6 = f.ipv6
		if f.ipv6 {
			cfg.IPv4 = false
		}
	}
	if fs.Changed("interface") {
		cfg.Interface = f.iface
	}
	if fs.Changed("via") {
		cfg.Via = f.via
	}
	if fs.Changed("color") {
		cfg.Colors = append([]string(nil), f.colors...)
	}
	if fs.Changed("simple-graphics") {
		cfg.SimpleGraphics = f.simple
	}
	if fs.Changed("restart") {
		cfg.Restart.Max = f.restart
	}
	if f.debug {
		cfg.Log.Debug = true
	}
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

// renderError formats err for the terminal. Structured errors already carry
// their own layout.
func renderError(err error) string {
	var pgErr *errors.Error
	if stderrors.As(err, &pgErr) {
		return strings.TrimRight(pgErr.Error(), "\n")
	}
	return "✗ " + err.Error()
}
