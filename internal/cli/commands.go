package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/pingraph/internal/config"
	"github.com/rileyhilliard/pingraph/internal/errors"
	"github.com/rileyhilliard/pingraph/internal/ui"
)

// Command-specific flags
var (
	initForce          bool
	initNonInteractive bool
)

// initCmd creates a new .pingraph.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init [targets...]",
	Short: "Create .pingraph.yaml configuration",
	Long: `Create a .pingraph.yaml file in the current directory.

Targets given as arguments are written to the file. Without
--non-interactive, a short form asks for targets and the window length.

Examples:
  pingraph init
  pingraph init --non-interactive example.com 1.1.1.1
  pingraph init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Dir:            ".",
			Targets:        args,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
			Out:            cmd.OutOrStdout(),
		})
	},
}

// addCmd appends targets to the config file
var addCmd = &cobra.Command{
	Use:   "add <target>...",
	Short: "Add targets to .pingraph.yaml",
	Long: `Append targets to the nearest .pingraph.yaml, keeping its comments.

When no config file is found, one is created in the current directory.
Targets that are already listed are skipped.

Examples:
  pingraph add example.com
  pingraph add 1.1.1.1 8.8.8.8`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addTargets(flags.config, args, cmd.OutOrStdout())
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for pingraph.

Examples:
  # Bash
  pingraph completion bash > /etc/bash_completion.d/pingraph

  # Zsh
  pingraph completion zsh > "${fpath[1]}/_pingraph"

  # Fish
  pingraph completion fish > ~/.config/fish/completions/pingraph.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

// addTargets appends targets to the config found from explicit, or to a new
// file in the current directory.
func addTargets(explicit string, targets []string, out io.Writer) error {
	path, err := config.Find(explicit)
	if err != nil {
		return err
	}
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Failed to create config file: %s", path),
				"Check directory permissions")
		}
	}

	for _, t := range targets {
		if err := config.AddTarget(path, t); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't add %s to %s", t, path),
				"Check that 'targets' in the config file is a list")
		}
	}

	fmt.Fprintf(out, "%s Added %s to %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), joinTargets(targets), path)
	return nil
}

func joinTargets(targets []string) string {
	if len(targets) == 1 {
		return targets[0]
	}
	return fmt.Sprintf("%d targets", len(targets))
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and use the given targets")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
