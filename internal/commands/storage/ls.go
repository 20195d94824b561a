package storage

import (
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var flags cmdutil.ListFlags

	cmd := &cobra.Command{
		Use:     "ls <bucket>",
		Aliases: []string{"list"},
		Short:   "List files in a bucket",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			queries, err := flags.BuildQueries()
			if err != nil {
				return err
			}

			list, err := env.Client.ListFiles(cmd.Context(), args[0], queries, flags.Search)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to list files: %w", err))
			}
			if len(list.Files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files found")
				return nil
			}

			rows := make([][]string, len(list.Files))
			for i, f := range list.Files {
				rows[i] = []string{f.ID, f.Name, ui.FormatSize(f.SizeOriginal), f.MimeType, ui.FormatTimestamp(f.CreatedAt)}
			}
			ui.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Size", "Type", "Created"}, rows)
			cmdutil.PrintTotal(cmd, len(rows), list.Total)
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
