package config

import (
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/spf13/cobra"
)

func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Manage error reporting",
		Long: `Manage crash and error reporting for the cumulus CLI.

Only error messages and system metadata are sent, never file contents.
Reporting can also be disabled for a single shell with:
  export CUMULUS_TELEMETRY_DISABLED=true`,
	}

	cmd.AddCommand(newTelemetryToggleCmd("enable", "Enable error reporting", true))
	cmd.AddCommand(newTelemetryToggleCmd("disable", "Disable error reporting", false))
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether error reporting is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.GetConfigFromContext(cmd)
			if err != nil {
				return ui.NewConfigurationError(err)
			}
			state := "disabled"
			if cfg.IsTelemetryEnabled() {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Telemetry: %s\n", state)
			return nil
		},
	})

	return cmd
}

func newTelemetryToggleCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.GetConfigFromContext(cmd)
			if err != nil {
				return ui.NewConfigurationError(err)
			}
			cfg.TelemetryEnabled = &enabled
			if err := config.Save(cfg); err != nil {
				return ui.NewFileSystemError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Telemetry %sd\n", use)
			return nil
		},
	}
}
