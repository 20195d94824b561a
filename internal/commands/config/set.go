package config

import (
	"fmt"
	"strings"

	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.cumulus/config.yaml

Examples:
  cumulus config set endpoint https://cloud.appwrite.io/v1
  cumulus config set project 6512ab34cd
  cumulus config set chunk-size 10485760`,
		Args: cobra.ExactArgs(2),
		RunE: runSet,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key, value := args[0], args[1]

	if !config.IsValidUserFacingKey(config.NormalizeKey(key)) {
		//nolint:errcheck // Writing to stderr, error not actionable
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: '%s' is not a recognized configuration key\n\n", key)
		//nolint:errcheck // Writing to stderr, error not actionable
		fmt.Fprintf(cmd.ErrOrStderr(), "Valid configuration keys:\n")
		for _, validKey := range config.GetUserFacingKeys() {
			desc := config.GetConfigKeyDescription(config.NormalizeKey(validKey))
			//nolint:errcheck // Writing to stderr, error not actionable
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", strings.TrimSuffix(validKey+" - "+desc, " - "))
		}
		return fmt.Errorf("invalid configuration key")
	}

	typedValue, err := config.SetValue(key, value)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %v\n", key, typedValue)
	return nil
}
