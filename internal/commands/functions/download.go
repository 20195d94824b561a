package functions

import (
	"fmt"
	"os"

	"github.com/cumulus-dev/cumulus/internal/api"
	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	var (
		output       string
		downloadType string
	)

	cmd := &cobra.Command{
		Use:   "download <function-id> <deployment-id>",
		Short: "Download a deployment's source or build output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt := api.DeploymentDownloadType(downloadType)
			if dt != api.DeploymentDownloadTypeSource && dt != api.DeploymentDownloadTypeOutput {
				cmd.SilenceUsage = true
				return ui.NewValidationError(fmt.Errorf("--type must be source or output, got %q", downloadType))
			}

			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			data, err := env.Client.GetDeploymentDownload(cmd.Context(), args[0], args[1], dt)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to download deployment: %w", err))
			}

			if output == "" {
				output = fmt.Sprintf("%s-%s.tar.gz", args[1], dt)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil { //nolint:gosec // user archive
				return ui.NewFileSystemError(fmt.Errorf("failed to write %s: %w", output, err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s (%s)\n", output, ui.FormatSize(int64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Local path (default: <deployment>-<type>.tar.gz)")
	cmd.Flags().StringVar(&downloadType, "type", string(api.DeploymentDownloadTypeSource), "source or output")

	return cmd
}
