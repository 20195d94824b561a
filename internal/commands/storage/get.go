package storage

import (
	"fmt"
	"strings"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <bucket> <file>",
		Short: "Show file metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			f, err := env.Client.GetFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to get file: %w", err))
			}

			rows := [][]string{
				{"ID", f.ID},
				{"Name", f.Name},
				{"Bucket", f.BucketID},
				{"Size", ui.FormatSize(f.SizeOriginal)},
				{"Type", f.MimeType},
				{"Signature", f.Signature},
				{"Chunks", fmt.Sprintf("%d/%d", f.ChunksUploaded, f.ChunksTotal)},
				{"Permissions", strings.Join(f.Permissions, ", ")},
				{"Created", ui.FormatTimestamp(f.CreatedAt)},
				{"Updated", ui.FormatTimestamp(f.UpdatedAt)},
			}
			ui.RenderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows)
			return nil
		},
	}
}
