package config

import (
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Manage CLI configuration settings.

Configuration is stored in ~/.cumulus/config.yaml. CUMULUS_ENDPOINT,
CUMULUS_PROJECT, CUMULUS_KEY and CUMULUS_JWT (also read from a .env file)
override the stored values.

Available subcommands:
  set        - Set a configuration value
  get        - Get a configuration value
  list       - List all configuration
  edit       - Open config file in editor
  telemetry  - Enable or disable error reporting`,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newTelemetryCmd())

	return cmd
}
