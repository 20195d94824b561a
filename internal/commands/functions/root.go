package functions

import (
	"github.com/spf13/cobra"
)

// NewFunctionsCmd creates the functions command group
func NewFunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "functions",
		Aliases: []string{"function", "fn"},
		Short:   "Manage functions and their deployments",
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeployCmd())
	cmd.AddCommand(newDeploymentsCmd())
	cmd.AddCommand(newDownloadCmd())

	return cmd
}
