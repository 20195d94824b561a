package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// DisplayConfigContextKey is the key used to store DisplayConfig in context
type DisplayConfigContextKey struct{}

// GetDisplayConfigContextKey returns the key used to store DisplayConfig in context
func GetDisplayConfigContextKey() DisplayConfigContextKey {
	return DisplayConfigContextKey{}
}

// DisplayConfig contains display-related configuration
type DisplayConfig struct {
	DisableAnimation bool
	IsInteractive    bool
}

// SimpleOutput reports whether views print plain progress lines instead of
// rendering a TUI.
func (d DisplayConfig) SimpleOutput() bool {
	return !d.IsInteractive || d.DisableAnimation
}

// terminalState is what NewDisplayConfig reads from the environment
type terminalState struct {
	stdoutIsTTY              bool
	stderrRedirectedToStdout bool
	noColorEnv               bool
}

// NewDisplayConfig extracts display options from persistent flags and TTY detection
func NewDisplayConfig(cmd *cobra.Command, verbose bool) (DisplayConfig, error) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	disableAnimationFlag, _ := cmd.Flags().GetBool("disable-animation")

	state := terminalState{
		stdoutIsTTY: isatty.IsTerminal(os.Stdout.Fd()),
		noColorEnv:  os.Getenv("NO_COLOR") != "",
	}
	if stat1, err1 := os.Stdout.Stat(); err1 == nil {
		if stat2, err2 := os.Stderr.Stat(); err2 == nil {
			state.stderrRedirectedToStdout = os.SameFile(stat1, stat2)
		}
	}

	opts := resolveDisplayConfig(state, noColor || disableAnimationFlag, verbose)

	slog.Debug("Display options determined",
		"command", cmd.Name(),
		"no-color-flag", noColor,
		"disable-animation-flag", disableAnimationFlag,
		"verbose-flag", verbose,
		"stdout-is-tty", state.stdoutIsTTY,
		"stderr-same-as-stdout", state.stderrRedirectedToStdout,
		"is-interactive", opts.IsInteractive,
		"simple-output", opts.SimpleOutput(),
	)

	return opts, nil
}

// resolveDisplayConfig decides between the TUI and plain output. Verbose logs
// only force plain output when they would land on the same file as the TUI.
func resolveDisplayConfig(state terminalState, disableFlag, verbose bool) DisplayConfig {
	disableAnimation := disableFlag || state.noColorEnv
	verboseForcesSimpleOutput := verbose && state.stderrRedirectedToStdout

	return DisplayConfig{
		DisableAnimation: disableAnimation,
		IsInteractive:    state.stdoutIsTTY && !disableAnimation && !verboseForcesSimpleOutput,
	}
}

// WithDisplayConfig stores opts in ctx for GetDisplayConfigFromContext.
func WithDisplayConfig(ctx context.Context, opts DisplayConfig) context.Context {
	return context.WithValue(ctx, GetDisplayConfigContextKey(), opts)
}

// GetDisplayConfigFromContext retrieves DisplayConfig from the command context
func GetDisplayConfigFromContext(cmd *cobra.Command) (DisplayConfig, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return DisplayConfig{}, fmt.Errorf("command context is nil")
	}

	opts, ok := ctx.Value(GetDisplayConfigContextKey()).(DisplayConfig)
	if !ok {
		return DisplayConfig{}, fmt.Errorf("display options not found in context")
	}

	return opts, nil
}
