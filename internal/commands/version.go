package commands

import (
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd prints build information
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of cumulus",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
		},
	}
}
