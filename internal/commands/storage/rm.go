package storage

import (
	"errors"
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <bucket> <file>...",
		Aliases: []string{"delete"},
		Short:   "Delete files from a bucket",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			bucketID := args[0]
			var errs []error
			for _, fileID := range args[1:] {
				if err := env.Client.DeleteFile(cmd.Context(), bucketID, fileID); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", fileID, err))
					fmt.Fprintf(cmd.ErrOrStderr(), "✗ Failed to delete %s: %v\n", fileID, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", fileID)
			}

			if len(errs) > 0 {
				return ui.Classify(errors.Join(errs...))
			}
			return nil
		},
	}
}
