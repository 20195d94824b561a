package sites

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	"github.com/cumulus-dev/cumulus/internal/files"
	"github.com/cumulus-dev/cumulus/internal/ui"
	uiDeploy "github.com/cumulus-dev/cumulus/internal/ui/commands/deploy"
	"github.com/spf13/cobra"
)

func newDeployCmd() *cobra.Command {
	var (
		flags           cmdutil.DeployFlags
		installCommand  string
		buildCommand    string
		outputDirectory string
		ignore          []string
	)

	cmd := &cobra.Command{
		Use:   "deploy [site-id]",
		Short: "Deploy site code",
		Long: `Package a site directory, upload it in chunks and follow the build.

Without --path the site is read from cumulus.toml. Build settings not given
here or in cumulus.toml keep the values configured on the site.

Examples:
  cumulus sites deploy
  cumulus sites deploy docs --path ./docs --build-command "npm run build" --output-directory dist`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}

			var target uiDeploy.Target
			if flags.FromProjectFile() {
				pc, baseDir, err := flags.LoadProject(cmd)
				if err != nil {
					return err
				}
				sc, err := pc.Site(id)
				if err != nil {
					return ui.NewValidationError(err)
				}
				target = uiDeploy.Target{
					ResourceID:      sc.ID,
					Root:            filepath.Join(baseDir, sc.Path),
					Ignore:          sc.Ignore,
					Activate:        flags.ResolveActivate(cmd, sc.ShouldActivate()),
					InstallCommand:  sc.InstallCommand,
					BuildCommand:    sc.BuildCommand,
					OutputDirectory: sc.OutputDirectory,
				}
			} else {
				if id == "" {
					cmd.SilenceUsage = true
					return ui.NewValidationError(fmt.Errorf("a site id is required with --path"))
				}
				target = uiDeploy.Target{
					ResourceID: id,
					Root:       flags.Path,
					Ignore:     append(slices.Clone(files.DefaultIgnore), ignore...),
					Activate:   flags.Activate,
				}
			}
			target.Kind = uiDeploy.KindSite
			if installCommand != "" {
				target.InstallCommand = installCommand
			}
			if buildCommand != "" {
				target.BuildCommand = buildCommand
			}
			if outputDirectory != "" {
				target.OutputDirectory = outputDirectory
			}

			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			site, err := env.Client.GetSite(cmd.Context(), target.ResourceID)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to get site %s: %w", target.ResourceID, err))
			}
			if target.BuildCommand == "" && site.BuildCommand == "" && site.Framework == "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: site %s has no build command or framework set\n", site.ID)
			}

			return cmdutil.RunDeploy(cmd, env, &flags, target)
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVar(&installCommand, "install-command", "", "Install command, e.g. 'npm ci'")
	cmd.Flags().StringVar(&buildCommand, "build-command", "", "Build command, e.g. 'npm run build'")
	cmd.Flags().StringVar(&outputDirectory, "output-directory", "", "Build output directory, e.g. dist")
	cmd.Flags().StringArrayVar(&ignore, "ignore", nil, "Extra ignore pattern with --path (repeatable)")

	return cmd
}
