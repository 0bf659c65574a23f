package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/pingraph/internal/config"
	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string   // Directory to write the config into
	Targets        []string // Pre-specified targets
	Overwrite      bool     // Overwrite existing config without asking
	NonInteractive bool     // Skip prompts, use what was given
	Out            io.Writer
}

// Init creates a new .pingraph.yaml configuration file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	configPath := filepath.Join(opts.Dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Targets = opts.Targets

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if len(cfg.Targets) == 0 {
		return errors.New(errors.ErrConfig,
			"At least one target is required",
			"Pass targets as arguments: pingraph init example.com 1.1.1.1")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Save(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SuccessStyle.Render(ui.SymbolSuccess), configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  pingraph             - Graph the configured targets")
	fmt.Fprintln(out, "  pingraph add <host>  - Add another target")
	return nil
}

// promptConfig asks for targets, window length, and drawing style.
func promptConfig(cfg *config.Config) error {
	targets := strings.Join(cfg.Targets, " ")
	buffer := strconv.Itoa(cfg.Buffer)
	simple := cfg.SimpleGraphics

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Targets").
				Description("Hosts or IP addresses to ping, separated by spaces").
				Placeholder("example.com 1.1.1.1").
				Value(&targets).
				Validate(func(s string) error {
					if len(strings.Fields(s)) == 0 {
						return fmt.Errorf("at least one target is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Window").
				Description("Seconds of history to show").
				Value(&buffer).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return fmt.Errorf("window must be a whole number of seconds")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Use simple graphics?").
				Description("Dots instead of braille, for fonts without braille glyphs").
				Value(&simple),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Pass targets as arguments with --non-interactive")
	}

	cfg.Targets = strings.Fields(targets)
	cfg.Buffer, _ = strconv.Atoi(strings.TrimSpace(buffer))
	cfg.SimpleGraphics = simple
	return nil
}
