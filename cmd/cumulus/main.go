package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cumulus-dev/cumulus/internal/commands"
	"github.com/cumulus-dev/cumulus/internal/ui"
	cumulus_bugsnag "github.com/cumulus-dev/cumulus/pkg/bugsnag"
)

func main() {
	ctx := context.Background()

	// Bugsnag is configured by the root command once the user config is loaded
	defer cumulus_bugsnag.NotifyOnPanic(ctx)

	rootCmd := commands.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var uiErr *ui.UIError
	if errors.As(err, &uiErr) {
		if uiErr.Type == ui.ErrorTypeUserCancelled {
			os.Exit(130)
		}
		if uiErr.Type == ui.ErrorTypeInternal || uiErr.Type == ui.ErrorTypeAPI {
			cumulus_bugsnag.NotifyError(ctx, uiErr.Err)
		}
		if !uiErr.SilentExit {
			fmt.Fprint(os.Stderr, ui.FormatError(uiErr))
		}
		os.Exit(1)
	}

	errMsg := err.Error()
	switch {
	case strings.HasPrefix(errMsg, "unknown command"):
		// commands suppress usage, so show it here
		_ = rootCmd.Usage()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
	case strings.HasPrefix(errMsg, "unknown flag"):
		// cobra already printed usage
		fmt.Fprintln(os.Stderr, err)
	default:
		cumulus_bugsnag.NotifyError(ctx, err)
		fmt.Fprint(os.Stderr, ui.FormatError(err))
	}
	os.Exit(1)
}
