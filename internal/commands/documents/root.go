package documents

import (
	"github.com/spf13/cobra"
)

// NewDocumentsCmd creates the documents command group
func NewDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Inspect database documents",
	}

	cmd.AddCommand(newListCmd())

	return cmd
}
