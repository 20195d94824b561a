package documents

import (
	"encoding/json"
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

const maxDataWidth = 60

func newListCmd() *cobra.Command {
	var flags cmdutil.ListFlags

	cmd := &cobra.Command{
		Use:     "ls <database-id> <collection-id>",
		Aliases: []string{"list"},
		Short:   "List documents in a collection",
		Long: `List documents in a collection. Filter with raw queries, e.g.

  cumulus documents ls main books --query '{"method":"equal","attribute":"author","values":["Le Guin"]}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			queries, err := flags.BuildQueries()
			if err != nil {
				return err
			}

			list, err := env.Client.ListDocuments(cmd.Context(), args[0], args[1], queries)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to list documents: %w", err))
			}
			if len(list.Documents) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No documents found")
				return nil
			}

			rows := make([][]string, len(list.Documents))
			for i, d := range list.Documents {
				rows[i] = []string{d.ID, summarize(d.Data), ui.FormatTimestamp(d.UpdatedAt)}
			}
			ui.RenderTable(cmd.OutOrStdout(), []string{"ID", "Data", "Updated"}, rows)
			cmdutil.PrintTotal(cmd, len(rows), list.Total)
			return nil
		},
	}

	flags.Register(cmd)
	cmd.Flags().Lookup("search").Hidden = true
	return cmd
}

// summarize renders user attributes as compact JSON, cut to the column width.
func summarize(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "-"
	}
	s := string(b)
	if len([]rune(s)) > maxDataWidth {
		s = string([]rune(s)[:maxDataWidth-1]) + "…"
	}
	return s
}
