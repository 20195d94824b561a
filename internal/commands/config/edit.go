package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/spf13/cobra"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the config file in an editor",
		Long: `Open ~/.cumulus/config.yaml in $VISUAL or $EDITOR (vi, or notepad on
Windows). The file is checked once the editor exits.

Example:
  EDITOR="code --wait" cumulus config edit`,
		Args: cobra.NoArgs,
		RunE: runEdit,
	}
}

// editorCommand splits the configured editor so values like "code --wait"
// work.
func editorCommand(getenv func(string) string, goos string) []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	if goos == "windows" {
		return []string{"notepad"}
	}
	return []string{"vi"}
}

func runEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	path := config.ConfigPath()
	if _, err := os.Stat(path); err != nil {
		return ui.NewConfigurationError(fmt.Errorf("no config file at %s: %w", path, err))
	}

	editor := editorCommand(os.Getenv, runtime.GOOS)
	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s with %s...\n", path, editor[0])

	editorCmd := exec.CommandContext(cmd.Context(), editor[0], append(editor[1:], path)...) //nolint:gosec // Editor from user's environment variable
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return ui.NewInternalError(fmt.Errorf("failed to run %s: %w", editor[0], err))
	}

	if _, err := config.Load(); err != nil {
		return ui.NewConfigurationError(fmt.Errorf("%s is no longer valid: %w", path, err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Config saved")
	return nil
}
