package config

import (
	"fmt"

	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value from ~/.cumulus/config.yaml

Examples:
  cumulus config get endpoint
  cumulus config get chunk-size`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	if !config.IsValidUserFacingKey(config.NormalizeKey(key)) {
		return fmt.Errorf("'%s' is not a recognized configuration key. Run 'cumulus config set --help' for valid keys", key)
	}

	value, ok := config.GetValue(key)
	if !ok {
		return fmt.Errorf("configuration key '%s' not set", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}
