package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cumulus-dev/cumulus/internal/commands/cmdutil"
	configCmd "github.com/cumulus-dev/cumulus/internal/commands/config"
	documentsCmd "github.com/cumulus-dev/cumulus/internal/commands/documents"
	functionsCmd "github.com/cumulus-dev/cumulus/internal/commands/functions"
	sitesCmd "github.com/cumulus-dev/cumulus/internal/commands/sites"
	storageCmd "github.com/cumulus-dev/cumulus/internal/commands/storage"
	teamsCmd "github.com/cumulus-dev/cumulus/internal/commands/teams"
	usersCmd "github.com/cumulus-dev/cumulus/internal/commands/users"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/cumulus-dev/cumulus/internal/version"
	"github.com/cumulus-dev/cumulus/pkg/bugsnag"
	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/cumulus-dev/cumulus/pkg/logsetup"
	"github.com/spf13/cobra"
)

// skipVersionCheck lists commands that never print an update notice
var skipVersionCheck = map[string]bool{
	"version":    true,
	"config":     true,
	"completion": true,
	"__complete": true,
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cumulus",
		Short: "cumulus CLI",
		Long:  "Command line client for Appwrite-compatible backends: storage uploads, function and site deployments.",
		// Errors are printed by main.go. Individual commands set
		// cmd.SilenceUsage = true so usage only shows for bad invocations.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")

			displayOpts, err := ui.NewDisplayConfig(cmd, verbose)
			if err != nil {
				return fmt.Errorf("error getting display options: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return ui.NewConfigurationError(fmt.Errorf("error loading config: %w", err))
			}

			if verbose {
				logFile, err := logsetup.Setup(displayOpts.IsInteractive, cfg.GetLogLevel())
				if err != nil {
					return fmt.Errorf("error setting up logger: %w", err)
				}
				if logFile != "" {
					fmt.Fprintf(os.Stderr, "Debug logs: %s\n", logFile)
				}
			} else {
				logsetup.Disable()
			}

			slog.Debug("Config loaded successfully", "environment", cfg.Environment(), "endpoint", cfg.GetEndpoint())

			bugsnag.Initialize(cfg, version.Version)
			bugsnag.SetCommandContext(cmd.CommandPath(), args)

			cmd.SetContext(cmdutil.NewContext(cmd.Context(), cfg, displayOpts))

			if !cfg.SkipVersionCheck && !skipsVersionCheck(cmd) {
				if envCfg := cfg.GetEnvConfig(); envCfg != nil && envCfg.ReleasesURL != "" {
					checker := version.NewChecker(envCfg.ReleasesURL, filepath.Dir(config.ConfigPath()))
					checker.PrintUpdateNotification(cmd.Context(), cmd.ErrOrStderr())
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output and animations")
	rootCmd.PersistentFlags().Bool("disable-animation", false, "Print plain progress lines instead of animated bars")

	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())
	rootCmd.AddCommand(storageCmd.NewStorageCmd())
	rootCmd.AddCommand(functionsCmd.NewFunctionsCmd())
	rootCmd.AddCommand(sitesCmd.NewSitesCmd())
	rootCmd.AddCommand(usersCmd.NewUsersCmd())
	rootCmd.AddCommand(teamsCmd.NewTeamsCmd())
	rootCmd.AddCommand(documentsCmd.NewDocumentsCmd())

	return rootCmd
}

func skipsVersionCheck(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if skipVersionCheck[c.Name()] {
			return true
		}
	}
	return false
}
