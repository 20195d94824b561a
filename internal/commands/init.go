package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cumulus-dev/cumulus/internal/id"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/cumulus-dev/cumulus/pkg/projectconfig"
	"github.com/spf13/cobra"
)

const exampleJS = `export default async ({ req, res, log }) => {
  log("Hello from cumulus");
  return res.json({ ok: true, path: req.path });
};

// To deploy, run:
// cumulus functions deploy
`

const examplePy = `def main(context):
    context.log("Hello from cumulus")
    return context.res.json({"ok": True, "path": context.req.path})

# To deploy, run:
# cumulus functions deploy
`

type initOptions struct {
	configFile string
	path       string

	name       string
	runtime    string
	entrypoint string
	commands   string

	framework       string
	installCommand  string
	buildCommand    string
	outputDirectory string
}

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Add a function or site to cumulus.toml",
		Long: `Add a function or site to cumulus.toml, creating the file if needed.

Examples:
  cumulus init function hello --runtime node-18.0
  cumulus init function worker --path ./worker --entrypoint main.py --runtime python-3.11
  cumulus init site docs --path ./docs --framework astro --output-directory dist`,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config-file", projectconfig.DefaultFileName, "Path to the cumulus.toml file")
	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "Code directory, relative to cumulus.toml (default: ./<id>)")
	cmd.PersistentFlags().StringVar(&opts.name, "name", "", "Display name")

	fnCmd := &cobra.Command{
		Use:   "function <id>",
		Short: "Add a function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitFunction(cmd, args[0], opts)
		},
	}
	fnCmd.Flags().StringVar(&opts.runtime, "runtime", "", "Runtime, e.g. node-18.0 or python-3.11")
	fnCmd.Flags().StringVar(&opts.entrypoint, "entrypoint", "", "Entrypoint file (default: src/main.js or src/main.py)")
	fnCmd.Flags().StringVar(&opts.commands, "commands", "", "Build commands, e.g. 'npm install'")

	siteCmd := &cobra.Command{
		Use:   "site <id>",
		Short: "Add a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitSite(cmd, args[0], opts)
		},
	}
	siteCmd.Flags().StringVar(&opts.framework, "framework", "", "Framework, e.g. nextjs, astro or other")
	siteCmd.Flags().StringVar(&opts.installCommand, "install-command", "", "Install command")
	siteCmd.Flags().StringVar(&opts.buildCommand, "build-command", "", "Build command")
	siteCmd.Flags().StringVar(&opts.outputDirectory, "output-directory", "", "Build output directory")

	cmd.AddCommand(fnCmd, siteCmd)
	return cmd
}

// validateResourcePath keeps code directories inside the project directory
func validateResourcePath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("path must be relative to cumulus.toml")
	}
	if strings.Contains(p, "\x00") {
		return fmt.Errorf("path cannot contain null bytes")
	}
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("path cannot leave the project directory")
	}
	return nil
}

// loadOrCreate returns the existing project file or an empty one.
func loadOrCreate(configFile string) (*projectconfig.ProjectConfig, error) {
	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		return &projectconfig.ProjectConfig{}, nil
	}
	return projectconfig.Load(configFile)
}

func prepareInit(cmd *cobra.Command, resourceID string, opts *initOptions) (*projectconfig.ProjectConfig, string, error) {
	cmd.SilenceUsage = true

	if resourceID == id.Unique() || !id.IsValid(resourceID) {
		return nil, "", ui.NewValidationError(fmt.Errorf("invalid id %q: use up to 36 characters of a-z, A-Z, 0-9, '.', '-' and '_'", resourceID))
	}
	if opts.path == "" {
		opts.path = "./" + resourceID
	}
	if err := validateResourcePath(opts.path); err != nil {
		return nil, "", ui.NewValidationError(err)
	}

	pc, err := loadOrCreate(opts.configFile)
	if err != nil {
		return nil, "", ui.NewConfigurationError(err)
	}

	dir := filepath.Join(filepath.Dir(opts.configFile), opts.path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // Project directory needs standard permissions
		return nil, "", ui.NewFileSystemError(fmt.Errorf("failed to create %s: %w", dir, err))
	}
	return pc, dir, nil
}

func runInitFunction(cmd *cobra.Command, resourceID string, opts initOptions) error {
	pc, dir, err := prepareInit(cmd, resourceID, &opts)
	if err != nil {
		return err
	}
	if _, err := pc.Function(resourceID); err == nil {
		return ui.NewValidationError(fmt.Errorf("function %q already exists in %s", resourceID, opts.configFile))
	}

	if opts.entrypoint == "" {
		opts.entrypoint = "src/main.js"
		if strings.HasPrefix(opts.runtime, "python") {
			opts.entrypoint = "src/main.py"
		}
	}
	if err := writeStarter(filepath.Join(dir, opts.entrypoint)); err != nil {
		return ui.NewFileSystemError(err)
	}

	pc.Functions = append(pc.Functions, projectconfig.FunctionConfig{
		ID:         resourceID,
		Name:       opts.name,
		Runtime:    opts.runtime,
		Path:       opts.path,
		Entrypoint: opts.entrypoint,
		Commands:   opts.commands,
	})
	return saveProject(cmd, pc, opts.configFile, "function", resourceID)
}

func runInitSite(cmd *cobra.Command, resourceID string, opts initOptions) error {
	pc, _, err := prepareInit(cmd, resourceID, &opts)
	if err != nil {
		return err
	}
	if _, err := pc.Site(resourceID); err == nil {
		return ui.NewValidationError(fmt.Errorf("site %q already exists in %s", resourceID, opts.configFile))
	}

	pc.Sites = append(pc.Sites, projectconfig.SiteConfig{
		ID:              resourceID,
		Name:            opts.name,
		Framework:       opts.framework,
		Path:            opts.path,
		InstallCommand:  opts.installCommand,
		BuildCommand:    opts.buildCommand,
		OutputDirectory: opts.outputDirectory,
	})
	return saveProject(cmd, pc, opts.configFile, "site", resourceID)
}

// writeStarter creates an example entrypoint unless one already exists.
func writeStarter(entrypoint string) error {
	if _, err := os.Stat(entrypoint); err == nil {
		return nil
	}
	content := exampleJS
	if filepath.Ext(entrypoint) == ".py" {
		content = examplePy
	}
	if err := os.MkdirAll(filepath.Dir(entrypoint), 0o755); err != nil { //nolint:gosec // Project directory needs standard permissions
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(entrypoint), err)
	}
	if err := os.WriteFile(entrypoint, []byte(content), 0o644); err != nil { //nolint:gosec // Project files need to be readable
		return fmt.Errorf("failed to create %s: %w", entrypoint, err)
	}
	return nil
}

func saveProject(cmd *cobra.Command, pc *projectconfig.ProjectConfig, configFile, kind, resourceID string) error {
	if err := projectconfig.Validate(pc, filepath.Dir(configFile)); err != nil {
		return ui.NewValidationError(err)
	}
	if err := projectconfig.Save(configFile, pc); err != nil {
		return ui.NewFileSystemError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s %s to %s\n", kind, resourceID, configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Create it in the console, then run: cumulus %ss deploy %s\n", kind, resourceID)
	return nil
}
