// Package cmdutil holds what every API-backed command needs: the config and
// display options stored by the root command, an API client and list flags.
package cmdutil

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cumulus-dev/cumulus/internal/api"
	"github.com/cumulus-dev/cumulus/internal/query"
	"github.com/cumulus-dev/cumulus/internal/timeutil"
	"github.com/cumulus-dev/cumulus/internal/ui"
	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/spf13/cobra"
)

// NewClient is swapped out in tests.
var NewClient = api.NewClient

// Env is the per-invocation state of an API-backed command.
type Env struct {
	Display ui.DisplayConfig
	Config  *config.Config
	Client  api.Client
}

// Setup reads the config and display options from the command context and
// creates a client. It fails early when no project is configured.
func Setup(cmd *cobra.Command) (*Env, error) {
	cmd.SilenceUsage = true

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return nil, ui.NewInternalError(fmt.Errorf("failed to get display options: %w", err))
	}

	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return nil, ui.NewInternalError(fmt.Errorf("failed to get config: %w", err))
	}

	if _, err := cfg.GetCurrentProject(); err != nil {
		return nil, ui.NewConfigurationError(err)
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, ui.NewConfigurationError(fmt.Errorf("failed to create API client: %w", err))
	}

	return &Env{Display: displayOpts, Config: cfg, Client: client}, nil
}

// ListFlags are the paging and filtering flags shared by list commands.
type ListFlags struct {
	Limit   int
	Offset  int
	Cursor  string
	Search  string
	Since   string
	Queries []string
}

// Register adds the flags to cmd.
func (f *ListFlags) Register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.Limit, "limit", 25, "Maximum number of results")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "Number of results to skip")
	cmd.Flags().StringVar(&f.Cursor, "cursor", "", "Return results after this ID")
	cmd.Flags().StringVar(&f.Search, "search", "", "Full-text search term")
	cmd.Flags().StringVar(&f.Since, "since", "", "Only results created after this time (30m, 2d, 2006-01-02, RFC3339)")
	cmd.Flags().StringArrayVar(&f.Queries, "query", nil, `Raw query, e.g. '{"method":"equal","attribute":"name","values":["x"]}' (repeatable)`)
}

// BuildQueries turns the flags into query strings.
func (f *ListFlags) BuildQueries() ([]string, error) {
	queries := append([]string{}, f.Queries...)
	if f.Since != "" {
		since, err := timeutil.ParseSince(f.Since, time.Now(), time.Local)
		if err != nil {
			return nil, ui.NewValidationError(err)
		}
		q, err := query.GreaterThanEqual("$createdAt", timeutil.FormatQuery(since))
		if err != nil {
			return nil, ui.NewValidationError(err)
		}
		queries = append(queries, q)
	}
	if f.Limit > 0 {
		queries = append(queries, query.Limit(f.Limit))
	}
	if f.Offset > 0 {
		queries = append(queries, query.Offset(f.Offset))
	}
	if f.Cursor != "" {
		queries = append(queries, query.CursorAfter(f.Cursor))
	}
	return queries, nil
}

// PrintTotal writes the "showing x of y" footer below a table.
func PrintTotal(cmd *cobra.Command, shown int, total int64) {
	if int64(shown) < total {
		fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d\n", shown, total)
	}
}

// NewContext stores cfg and the display options for subcommands.
func NewContext(parent context.Context, cfg *config.Config, displayOpts ui.DisplayConfig) context.Context {
	ctx := context.WithValue(parent, config.GetContextKey(), cfg)
	return ui.WithDisplayConfig(ctx, displayOpts)
}

// RenderDeployments prints a function or site deployment table.
func RenderDeployments(cmd *cobra.Command, list *api.DeploymentList) {
	if len(list.Deployments) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No deployments found")
		return
	}

	rows := make([][]string, len(list.Deployments))
	for i, d := range list.Deployments {
		rows[i] = []string{
			d.ID,
			ui.ColorizeStatus(d.Status.String()),
			ui.FormatSize(d.SourceSize),
			strconv.FormatBool(d.Activate),
			ui.FormatTimestamp(d.CreatedAt),
		}
	}
	ui.RenderTable(cmd.OutOrStdout(), []string{"ID", "Status", "Size", "Active", "Created"}, rows)
	PrintTotal(cmd, len(rows), list.Total)
}
