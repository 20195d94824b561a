package functions

import (
	"fmt"
	"strconv"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var flags cmdutil.ListFlags

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List functions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			queries, err := flags.BuildQueries()
			if err != nil {
				return err
			}

			list, err := env.Client.ListFunctions(cmd.Context(), queries, flags.Search)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to list functions: %w", err))
			}
			if len(list.Functions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No functions found")
				return nil
			}

			rows := make([][]string, len(list.Functions))
			for i, f := range list.Functions {
				rows[i] = []string{f.ID, f.Name, f.Runtime.String(), f.DeploymentID, strconv.FormatBool(f.Enabled), ui.FormatTimestamp(f.UpdatedAt)}
			}
			ui.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Runtime", "Deployment", "Enabled", "Updated"}, rows)
			cmdutil.PrintTotal(cmd, len(rows), list.Total)
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
