package sites

import (
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newDeploymentsCmd() *cobra.Command {
	var flags cmdutil.ListFlags

	cmd := &cobra.Command{
		Use:   "deployments <site-id>",
		Short: "List deployments of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			queries, err := flags.BuildQueries()
			if err != nil {
				return err
			}

			list, err := env.Client.ListSiteDeployments(cmd.Context(), args[0], queries, flags.Search)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to list deployments: %w", err))
			}
			cmdutil.RenderDeployments(cmd, list)
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
