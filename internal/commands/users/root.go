package users

import (
	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Inspect project users",
	}

	cmd.AddCommand(newListCmd())

	return cmd
}
