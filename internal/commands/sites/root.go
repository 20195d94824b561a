package sites

import (
	"github.com/spf13/cobra"
)

// NewSitesCmd creates the sites command group
func NewSitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sites",
		Aliases: []string{"site"},
		Short:   "Deploy sites and list their deployments",
	}

	cmd.AddCommand(newDeployCmd())
	cmd.AddCommand(newDeploymentsCmd())

	return cmd
}
