package storage

import (
	"github.com/spf13/cobra"
)

// NewStorageCmd creates the storage command group
func NewStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage files in storage buckets",
		Long: `Upload, list, download and delete files in storage buckets.

Files larger than the chunk size (config key chunk-size, default 5MiB) are
uploaded in chunks. An interrupted upload can be resumed with --upload-id.`,
	}

	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newRmCmd())

	return cmd
}
