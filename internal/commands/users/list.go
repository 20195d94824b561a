package users

import (
	"fmt"
	"strings"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var flags cmdutil.ListFlags

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List users",
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

			list, err := env.Client.ListUsers(cmd.Context(), queries, flags.Search)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to list users: %w", err))
			}
			if len(list.Users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found")
				return nil
			}

			rows := make([][]string, len(list.Users))
			for i, u := range list.Users {
				status := "active"
				if !u.Status {
					status = "blocked"
				}
				rows[i] = []string{u.ID, u.Name, u.Email, status, strings.Join(u.Labels, ","), ui.FormatTimestamp(u.CreatedAt)}
			}
			ui.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Email", "Status", "Labels", "Created"}, rows)
			cmdutil.PrintTotal(cmd, len(rows), list.Total)
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
