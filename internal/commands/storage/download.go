package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/files"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <bucket> <file>",
		Short: "Download a file",
		Long: `Download a file and verify it against the signature stored by the server.

Examples:
  cumulus storage download photos cat            # saves under the file's name
  cumulus storage download photos cat -o ./x.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Local path (default: the stored file name)")
	return cmd
}

func runDownload(cmd *cobra.Command, bucketID, fileID, output string) error {
	env, err := cmdutil.Setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	meta, err := env.Client.GetFile(ctx, bucketID, fileID)
	if err != nil {
		return ui.Classify(fmt.Errorf("failed to get file: %w", err))
	}
	if output == "" {
		output = filepath.Base(meta.Name)
	}

	data, err := env.Client.GetFileDownload(ctx, bucketID, fileID)
	if err != nil {
		return ui.Classify(fmt.Errorf("failed to download file: %w", err))
	}
	if err := os.WriteFile(output, data, 0o644); err != nil { //nolint:gosec // Downloaded files are user files
		return ui.NewFileSystemError(fmt.Errorf("failed to write %s: %w", output, err))
	}

	// encrypted or compressed buckets sign the stored bytes, so only warn
	if meta.Signature != "" {
		if err := files.VerifySignature(output, meta.Signature); errors.Is(err, files.ErrSignatureMismatch) {
			slog.Warn("Downloaded file does not match its signature", "file", fileID, "signature", meta.Signature)
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s does not match the stored signature\n", output)
		} else if err != nil {
			return ui.NewFileSystemError(err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Downloaded %s to %s (%s)\n", fileID, output, ui.FormatSize(int64(len(data))))
	return nil
}
