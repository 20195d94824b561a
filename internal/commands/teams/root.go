package teams

import (
	"github.com/spf13/cobra"
)

// NewTeamsCmd creates the teams command group
func NewTeamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "teams",
		Aliases: []string{"team"},
		Short:   "Inspect project teams",
	}

	cmd.AddCommand(newListCmd())

	return cmd
}
