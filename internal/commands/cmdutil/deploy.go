package cmdutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cumulus-dev/cumulus/internal/ui"
	uiDeploy "github.com/cumulus-dev/cumulus/internal/ui/commands/deploy"
	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/cumulus-dev/cumulus/pkg/projectconfig"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

// DeployFlags are shared by `functions deploy` and `sites deploy`.
type DeployFlags struct {
	ConfigFile string
	Path       string
	UploadID   string
	MaxSize    string
	Activate   bool
	NoWait     bool
}

// Register adds the flags to cmd.
func (f *DeployFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ConfigFile, "config-file", projectconfig.DefaultFileName, "Path to the cumulus.toml file")
	cmd.Flags().StringVar(&f.Path, "path", "", "Code directory; skips cumulus.toml when set")
	cmd.Flags().StringVar(&f.UploadID, "upload-id", "", "Resume an interrupted code upload")
	cmd.Flags().StringVar(&f.MaxSize, "max-size", "", "Refuse archives larger than this, e.g. 30MB")
	cmd.Flags().BoolVar(&f.Activate, "activate", true, "Activate the deployment once built")
	cmd.Flags().BoolVar(&f.NoWait, "no-wait", false, "Exit once the code is uploaded, without following the build")
}

// FromProjectFile reports whether the target comes from cumulus.toml.
func (f *DeployFlags) FromProjectFile() bool {
	return f.Path == ""
}

// LoadProject reads and validates cumulus.toml and returns it with the
// directory its paths are relative to. A project_id in the file replaces the
// configured project for this command.
func (f *DeployFlags) LoadProject(cmd *cobra.Command) (*projectconfig.ProjectConfig, string, error) {
	pc, err := projectconfig.Load(f.ConfigFile)
	if err != nil {
		return nil, "", ui.NewConfigurationError(err)
	}
	baseDir := filepath.Dir(f.ConfigFile)
	if err := projectconfig.Validate(pc, baseDir); err != nil {
		return nil, "", ui.NewValidationError(fmt.Errorf("invalid %s: %w", f.ConfigFile, err))
	}
	if pc.ProjectID != "" {
		if cfg, err := config.GetConfigFromContext(cmd); err == nil {
			cfg.ProjectID = pc.ProjectID
		}
	}
	return pc, baseDir, nil
}

// ResolveActivate lets an explicit --activate override the project file.
func (f *DeployFlags) ResolveActivate(cmd *cobra.Command, fromFile bool) bool {
	if cmd.Flags().Changed("activate") {
		return f.Activate
	}
	return fromFile
}

// SizeLimit parses --max-size; zero means no limit.
func (f *DeployFlags) SizeLimit() (int64, error) {
	if f.MaxSize == "" {
		return 0, nil
	}
	size, err := units.FromHumanSize(f.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("invalid --max-size %q: %w", f.MaxSize, err)
	}
	return size, nil
}

// RunDeploy packages, uploads and follows one deployment.
func RunDeploy(cmd *cobra.Command, env *Env, flags *DeployFlags, target uiDeploy.Target) error {
	sizeLimit, err := flags.SizeLimit()
	if err != nil {
		return ui.NewValidationError(err)
	}

	model := uiDeploy.NewDeployView(cmd.Context(), uiDeploy.DeployConfig{
		DisplayConfig: env.Display,
		Client:        env.Client,
		Target:        target,
		UploadID:      flags.UploadID,
		Wait:          !flags.NoWait,
		SizeLimit:     sizeLimit,
		Output:        cmd.OutOrStdout(),
	})

	if env.Display.IsInteractive {
		fmt.Fprintln(cmd.OutOrStdout())
	}

	finalModel, err := ui.RunProgram(model, env.Display, 5*time.Second)
	if err != nil {
		return err
	}

	m, ok := finalModel.(*uiDeploy.DeployView)
	if !ok {
		return ui.NewInternalError(fmt.Errorf("unexpected model type"))
	}

	var uiErr *ui.UIError
	if errors.As(m.Error(), &uiErr) && !uiErr.SilentExit {
		return uiErr
	}
	return nil
}
