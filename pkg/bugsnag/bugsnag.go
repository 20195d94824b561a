// Package bugsnag reports unexpected CLI failures. Reporting is off unless an
// API key is compiled in and the user has not disabled telemetry.
package bugsnag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/bugsnag/bugsnag-go/v2"
	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/cumulus-dev/cumulus/internal/auth"
	"github.com/cumulus-dev/cumulus/pkg/config"
)

// Build-time variables, set via ldflags:
// go build -ldflags "-X github.com/cumulus-dev/cumulus/pkg/bugsnag.BugsnagAPIKey=your-key"
var (
	BugsnagAPIKey = ""

	DefaultReleaseStage = "cloud"
)

var (
	mu          sync.Mutex
	initialized bool
	enabled     bool
)

// Initialize configures the Bugsnag client once. Later calls are no-ops.
func Initialize(cfg *config.Config, appVersion string) {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return
	}
	initialized = true

	if cfg != nil && !cfg.IsTelemetryEnabled() {
		return
	}

	apiKey := BugsnagAPIKey
	if envKey := os.Getenv("BUGSNAG_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return
	}

	releaseStage := os.Getenv("CUMULUS_ENV")
	if releaseStage == "" {
		releaseStage = DefaultReleaseStage
	}
	if appVersion == "" {
		appVersion = "dev"
	}

	bugsnag.Configure(bugsnag.Configuration{
		APIKey:              apiKey,
		ReleaseStage:        releaseStage,
		AppVersion:          appVersion,
		AppType:             "cli",
		ProjectPackages:     []string{"main", "github.com/cumulus-dev/cumulus"},
		NotifyReleaseStages: []string{"cloud", "local"},
		PanicHandler:        func() {}, // panics are reported by NotifyOnPanic
		Synchronous:         true,      // the CLI exits right after reporting
		AutoCaptureSessions: false,
	})

	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("system", "os_type", runtime.GOOS)
		event.MetaData.Add("system", "os_arch", runtime.GOARCH)
		event.MetaData.Add("system", "go_version", runtime.Version())

		if cfg == nil {
			return nil
		}
		if cfg.ProjectID != "" {
			event.MetaData.Add("project", "project_id", cfg.ProjectID)
		}
		event.MetaData.Add("project", "endpoint", cfg.GetEndpoint())
		if userID := auth.UserID(cfg.JWT); userID != "" {
			event.User = &bugsnag.User{Id: userID}
		}
		return nil
	})

	enabled = true
}

// IsEnabled returns whether reports are actually sent.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// ShouldReport filters out failures that are the user's or the server's
// business rather than a client defect: cancellations, bad input, missing
// files and 4xx API responses.
func ShouldReport(err error) bool {
	if err == nil || IsUserCancellation(err) {
		return false
	}
	if errors.Is(err, apperr.ErrInvalidArgument) || errors.Is(err, apperr.ErrNotFound) {
		return false
	}
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) && apiErr.Code < http.StatusInternalServerError {
		return false
	}
	return true
}

// NotifyError reports err with error severity when it passes ShouldReport.
func NotifyError(ctx context.Context, err error) {
	NotifyWithMetadata(ctx, err, nil)
}

// NotifyWithMetadata reports err with extra tabs, e.g. the upload id of a
// failed chunked upload.
func NotifyWithMetadata(ctx context.Context, err error, metadata bugsnag.MetaData) {
	if !IsEnabled() || !ShouldReport(err) {
		return
	}
	rawData := []any{ctx, bugsnag.SeverityError}
	if metadata != nil {
		rawData = append(rawData, metadata)
	}
	_ = bugsnag.Notify(err, rawData...)
}

// NotifyOnPanic reports a panic and re-panics. Use with defer.
func NotifyOnPanic(ctx context.Context) {
	if r := recover(); r != nil {
		var err error
		switch x := r.(type) {
		case error:
			err = fmt.Errorf("panic: %w", x)
		default:
			err = fmt.Errorf("panic: %v", r)
		}
		NotifyError(ctx, err)
		panic(r)
	}
}

// SetCommandContext records which command was running.
func SetCommandContext(command string, args []string) {
	if !IsEnabled() {
		return
	}
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("command", "name", command)
		if len(args) > 0 {
			event.MetaData.Add("command", "args", strings.Join(args, " "))
		}
		return nil
	})
}

// IsUserCancellation identifies errors from Ctrl+C or a cancelled context.
func IsUserCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "operation cancelled") || strings.Contains(errStr, "user cancelled")
}
