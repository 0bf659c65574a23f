package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/rileyhilliard/pingraph/internal/config"
	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/exec"
	"github.com/rileyhilliard/pingraph/internal/logger"
	"github.com/rileyhilliard/pingraph/internal/monitor"
	"github.com/rileyhilliard/pingraph/internal/ping"
	"github.com/rileyhilliard/pingraph/internal/target"
	"github.com/rileyhilliard/pingraph/internal/ui"
	"github.com/rileyhilliard/pingraph/internal/util"
	"github.com/rileyhilliard/pingraph/pkg/sshutil"
)

// sshTimeout bounds connecting to the --via host.
const sshTimeout = 10 * time.Second

// graphCommand loads config, starts measuring, and shows the graph until the
// user quits or every target is gone.
func graphCommand(cmd *cobra.Command, args []string) error {
	fileCfg, cfgPath, err := config.LoadOrDefault(flags.config)
	if err != nil {
		return err
	}
	cfg := *fileCfg
	applyFlags(cmd.Flags(), flags, &cfg, args)
	if err := config.Validate(&cfg); err != nil {
		return err
	}

	if flags.noColor {
		ui.DisableColors()
	}

	runID := uuid.NewString()
	log, closeLog, err := logger.NewFileLogger(logger.FileOptions{
		Path:  cfg.Log.File,
		Debug: cfg.Log.Debug || os.Getenv(logger.DebugEnv) != "",
		RunID: runID,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s logging disabled: %v\n", ui.WarningStyle.Render(ui.SymbolWarn), err)
		log, closeLog = logger.Noop(), func() error { return nil }
	}
	defer func() { _ = closeLog() }()
	logger.SetDefault(log)
	log.Info("pingraph %s starting with %s", version, util.CountNoun(len(cfg.Targets), "target", "targets"))

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	run, err := prepareRun(ctx, &cfg, log, interactive)
	if err != nil {
		return err
	}
	defer run.close()

	opts := graphOptions{
		cfg:        &cfg,
		fileCfg:    fileCfg,
		configPath: cfgPath,
		clear:      flags.clear,
		log:        log,
	}
	if interactive {
		return runDashboard(ctx, run, opts, os.Stdout, os.Stderr)
	}
	return runPlain(ctx, run, opts, os.Stdout, os.Stderr)
}

// measureRun is everything needed to start measuring: the targets and how
// to open each one.
type measureRun struct {
	targets  []target.Target
	open     monitor.Opener
	interval time.Duration
	close    func()
}

// prepareRun picks the ping grammar, resolves hosts, and builds the opener.
func prepareRun(ctx context.Context, cfg *config.Config, log logger.Logger, interactive bool) (*measureRun, error) {
	targets := target.Parse(cfg.Targets, cfg.Cmd)
	run := &measureRun{close: func() {}}

	base := ping.Options{
		Family:    cfg.Family(),
		Interface: cfg.Interface,
		Logger:    log,
	}

	switch {
	case cfg.Cmd:
		base.Kind = ping.KindCommand

	case cfg.Via != "":
		pool := exec.NewPool(sshTimeout)
		run.close = func() {
			pool.Close()
			sshutil.CloseAgent()
		}
		kind, err := detectRemote(ctx, pool, cfg.Via, interactive)
		if err != nil {
			run.close()
			return nil, err
		}
		base.Kind = kind
		base.Launcher = exec.RemoteLauncher{Pool: pool, Host: cfg.Via}
		log.Info("pinging from %s (%s)", cfg.Via, kind)

	default:
		kind, err := ping.DetectLocal(ctx)
		if err != nil {
			return nil, err
		}
		base.Kind = kind
		log.Debug("local ping grammar: %s", kind)
	}

	base.Interval = cfg.Interval()
	if base.Interval <= 0 {
		base.Interval = ping.DefaultInterval(base.Kind)
	}
	run.interval = base.Interval

	// The vantage host resolves names itself.
	var unresolved map[int]error
	if !cfg.Cmd && cfg.Via == "" {
		targets, unresolved = target.ResolveAll(ctx, net.DefaultResolver, targets, cfg.Family())
		for idx, err := range unresolved {
			log.Warn("resolving %s failed: %v", targets[idx].Input, err)
		}
	}

	run.targets = targets
	run.open = newOpener(base, unresolved)
	return run, nil
}

// detectRemote connects to the vantage host and picks the grammar for its ping.
func detectRemote(ctx context.Context, pool *exec.Pool, via string, interactive bool) (ping.Kind, error) {
	var spinner *ui.Spinner
	if interactive {
		spinner = ui.NewSpinner("Connecting to " + via)
		spinner.Start()
	}
	finish := func(ok bool) {
		if spinner != nil {
			spinner.Finish(ok)
		}
	}

	platform, err := pool.Platform(via)
	if err != nil {
		finish(false)
		return 0, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't connect to %s", via),
			"Check that the host is reachable: ssh "+via)
	}
	if spinner != nil {
		spinner.SetLabel("Detecting ping on " + via)
	}
	kind, err := ping.Detect(ctx, platform, exec.RemoteLauncher{Pool: pool, Host: via})
	if err != nil {
		finish(false)
		return 0, err
	}
	finish(true)
	return kind, nil
}

// newOpener returns an Opener that starts base for each target. Targets
// that failed to resolve get a spawn error instead.
func newOpener(base ping.Options, unresolved map[int]error) monitor.Opener {
	return func(ctx context.Context, t target.Target) (ping.Stream, error) {
		if err, ok := unresolved[t.Index]; ok {
			return nil, errors.NewSpawn(t.Label, err, "Check the hostname, or try -4 / -6.")
		}
		opts := base
		opts.Target = t.Addr
		opts.Label = t.Label
		return ping.Open(ctx, opts)
	}
}

// graphOptions carries what the run loops need beyond the measure run.
type graphOptions struct {
	cfg        *config.Config
	fileCfg    *config.Config
	configPath string
	clear      bool
	log        logger.Logger
}

func (o graphOptions) orchestrator(run *measureRun) *monitor.Orchestrator {
	return monitor.NewOrchestrator(run.targets, run.open,
		monitor.WithLogger(o.log),
		monitor.WithRestart(o.cfg.Restart.Max, o.cfg.Restart.Delay),
		monitor.WithTickInterval(run.interval),
	)
}

// runDashboard draws the live graph until the user quits.
func runDashboard(ctx context.Context, run *measureRun, opts graphOptions, stdout, stderr io.Writer) error {
	labels := target.Labels(run.targets)
	orch := opts.orchestrator(run)
	agg := monitor.NewAggregator(labels, monitor.Window{
		Interval: run.interval,
		Buffer:   opts.cfg.BufferDuration(),
	}, monitor.WithAggregatorLogger(opts.log))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	resize := make(chan time.Duration, 1)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return orch.Run(gctx) })
	g.Go(func() error { return agg.Run(gctx, orch.Events(), resize) })
	if opts.configPath != "" {
		g.Go(func() error {
			watchConfig(gctx, opts.configPath, opts.fileCfg, opts.log, resize)
			return nil
		})
	}

	model := monitor.NewModel(agg, stop, monitor.Options{
		Title:     "pingraph",
		Colors:    seriesColors(opts.cfg.Colors),
		Simple:    opts.cfg.SimpleGraphics,
		Resize:    resize,
		ExportDir: opts.cfg.ExportDir,
		Logger:    opts.log,
	})

	// Quitting from the keyboard stops measurement through the model. A
	// signal stops both.
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(stdout))
	final, runErr := p.Run()
	stop()

	started := time.Now()
	waitErr := g.Wait()
	opts.log.Info("shutdown took %s", time.Since(started).Round(time.Millisecond))

	if runErr != nil && !errorsIsKilled(runErr) {
		return errors.WrapWithCode(runErr, errors.ErrRender,
			"The graph stopped unexpectedly",
			"Try --simple-graphics, or check the log file with --debug.")
	}
	if err := errors.IgnoreShutdown(waitErr); err != nil {
		return err
	}

	m, _ := final.(monitor.Model)
	if !opts.clear {
		fmt.Fprintln(stdout, m.FinalFrame())
	}

	snap := agg.Snapshot()
	reportExits(stderr, snap)
	if m.Failed() || orch.Started() == 0 {
		return errors.NewExitError(1)
	}
	return nil
}

// runPlain prints one line per result when stdout isn't a terminal.
func runPlain(ctx context.Context, run *measureRun, opts graphOptions, stdout, _ io.Writer) error {
	orch := opts.orchestrator(run)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var g errgroup.Group
	g.Go(func() error { return orch.Run(runCtx) })
	printErr := monitor.PrintPlain(stdout, target.Labels(run.targets), orch.Events())
	// PrintPlain returns early on a write error. Stop the workers and drain
	// what they already queued so Run can return.
	stop()
	for range orch.Events() {
	}
	if err := errors.IgnoreShutdown(multierr.Combine(g.Wait(), printErr)); err != nil {
		return err
	}
	if orch.Started() == 0 {
		return errors.NewExitError(1)
	}
	return nil
}

// watchConfig applies buffer changes from the config file live. Other
// changes only take effect on the next start.
func watchConfig(ctx context.Context, path string, current *config.Config, log logger.Logger, resize chan<- time.Duration) {
	err := config.Watch(ctx, path, current, log, func(prev, next *config.Config) {
		changed := config.Changed(prev, next)
		log.Info("config reloaded: %s", util.JoinOrNone(changed))

		var rest []string
		for _, key := range changed {
			if key == "buffer" {
				select {
				case resize <- next.BufferDuration():
				case <-ctx.Done():
				}
				continue
			}
			rest = append(rest, key)
		}
		if len(rest) > 0 {
			log.Warn("restart pingraph to apply: %s", util.JoinOrNone(rest))
		}
	})
	if err != nil {
		log.Warn("config watch disabled: %s", errors.ShortMessage(err))
	}
}

// reportExits prints why targets stopped, once the terminal is back.
func reportExits(w io.Writer, snap monitor.Snapshot) {
	for _, s := range snap.Series {
		switch {
		case s.Status == monitor.StatusFailed && s.Err != nil:
			fmt.Fprintf(w, "%s %s: %s\n", ui.ErrorStyle.Render(ui.SymbolFail), s.Label, errors.ShortMessage(s.Err))
		case s.Status == monitor.StatusExited && s.ExitCode != 0:
			msg := fmt.Sprintf("%s %s: ping exited with code %d", ui.ErrorStyle.Render(ui.SymbolFail), s.Label, s.ExitCode)
			if stderr := strings.TrimSpace(s.Stderr); stderr != "" {
				msg += "\n  " + strings.ReplaceAll(stderr, "\n", "\n  ")
			}
			if name, ok := exec.IsCommandNotFound(s.Stderr, s.ExitCode); ok && name != "" {
				msg += fmt.Sprintf("\n  Install '%s' on that host, or check its PATH.", name)
			}
			fmt.Fprintln(w, msg)
		}
	}
}

// seriesColors converts configured colors. Validation already checked them.
func seriesColors(colors []string) []lipgloss.Color {
	if len(colors) == 0 {
		return nil
	}
	out := make([]lipgloss.Color, 0, len(colors))
	for _, c := range colors {
		out = append(out, lipgloss.Color(c))
	}
	// Targets past the configured list fall back to the defaults.
	return append(out, monitor.DefaultSeriesColors...)
}

func errorsIsKilled(err error) bool {
	return stderrors.Is(err, tea.ErrProgramKilled) || errors.IsShutdown(err)
}
