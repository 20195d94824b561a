package functions

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
		flags      cmdutil.DeployFlags
		entrypoint string
		commands   string
		ignore     []string
	)

	cmd := &cobra.Command{
		Use:   "deploy [function-id]",
		Short: "Deploy function code",
		Long: `Package a code directory, upload it in chunks and follow the build.

Without --path the function is read from cumulus.toml; the id may be omitted
when the file declares a single function.

Examples:
  cumulus functions deploy
  cumulus functions deploy hello --path ./functions/hello --entrypoint src/main.js
  cumulus functions deploy hello --upload-id 6512ab34cd  # resume an interrupted upload`,
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
				fc, err := pc.Function(id)
				if err != nil {
					return ui.NewValidationError(err)
				}
				target = uiDeploy.Target{
					ResourceID: fc.ID,
					Root:       filepath.Join(baseDir, fc.Path),
					Ignore:     fc.Ignore,
					Activate:   flags.ResolveActivate(cmd, fc.ShouldActivate()),
					Entrypoint: fc.Entrypoint,
					Commands:   fc.Commands,
				}
			} else {
				if id == "" {
					cmd.SilenceUsage = true
					return ui.NewValidationError(fmt.Errorf("a function id is required with --path"))
				}
				target = uiDeploy.Target{
					ResourceID: id,
					Root:       flags.Path,
					Ignore:     append(slices.Clone(files.DefaultIgnore), ignore...),
					Activate:   flags.Activate,
				}
			}
			target.Kind = uiDeploy.KindFunction
			if entrypoint != "" {
				target.Entrypoint = entrypoint
			}
			if commands != "" {
				target.Commands = commands
			}

			env, err := cmdutil.Setup(cmd)
			if err != nil {
				return err
			}

			// fail before packaging when the function does not exist
			fn, err := env.Client.GetFunction(cmd.Context(), target.ResourceID)
			if err != nil {
				return ui.Classify(fmt.Errorf("failed to get function %s: %w", target.ResourceID, err))
			}
			if target.Entrypoint == "" {
				target.Entrypoint = fn.Entrypoint
			}

			return cmdutil.RunDeploy(cmd, env, &flags, target)
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVar(&entrypoint, "entrypoint", "", "Entrypoint file, relative to the code directory")
	cmd.Flags().StringVar(&commands, "commands", "", "Build commands, e.g. 'npm install'")
	cmd.Flags().StringArrayVar(&ignore, "ignore", nil, "Extra ignore pattern with --path (repeatable)")

	return cmd
}
