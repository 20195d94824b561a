package teams

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
		Short:   "List teams",
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

			list, err := env.Client.ListTeams(cmd.Context(), queries, flags.Search)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to list teams: %w", err))
			}
			if len(list.Teams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No teams found")
				return nil
			}

			rows := make([][]string, len(list.Teams))
			for i, team := range list.Teams {
				rows[i] = []string{team.ID, team.Name, strconv.FormatInt(team.Total, 10), ui.FormatTimestamp(team.CreatedAt)}
			}
			ui.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Members", "Created"}, rows)
			cmdutil.PrintTotal(cmd, len(rows), list.Total)
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
