package config

import (
	"fmt"

	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/spf13/cobra"
)

// secretKeys are shown masked
var secretKeys = map[string]bool{"key": true, "jwt": true}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration",
		Long: `List the configuration for the current environment (CUMULUS_ENV)

Example:
  cumulus config list`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	found := false
	for _, key := range config.GetUserFacingKeys() {
		value, ok := config.GetValue(key)
		if !ok {
			continue
		}
		found = true
		if secretKeys[config.NormalizeKey(key)] {
			value = mask(fmt.Sprint(value))
		}
		fmt.Fprintf(out, "%s: %v\n", key, value)
	}

	if !found {
		fmt.Fprintln(out, "No configuration found for current environment")
	}
	return nil
}

// mask keeps the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
