// Package logsetup configures the process-wide slog logger for the CLI.
package logsetup

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-isatty"
)

// secretKeys are attribute keys whose values never reach a log sink
var secretKeys = map[string]bool{
	"key":                true,
	"apikey":             true,
	"jwt":                true,
	"password":           true,
	"x-appwrite-key":     true,
	"x-appwrite-jwt":     true,
	"x-appwrite-session": true,
}

const redacted = "[REDACTED]"

// Setup configures the global slog logger.
//
// When the progress UI owns the terminal (isInteractive and stderr is a TTY)
// logs go to a timestamped file in the temp dir so they don't tear the UI.
// Otherwise they go to stderr, which keeps 2> redirection working.
//
// Returns the log file path, or "" when logging to stderr.
func Setup(isInteractive bool, level slog.Level) (string, error) {
	var output io.Writer
	var logFilePath string

	if isInteractive && isatty.IsTerminal(os.Stderr.Fd()) {
		timestamp := time.Now().Format("2006-01-02T15-04-05")
		logFilePath = filepath.Join(os.TempDir(), fmt.Sprintf("cumulus-debug-%s.log", timestamp))

		logFile, err := os.OpenFile(logFilePath, //nolint:gosec // Log file in temp directory
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return "", err
		}
		output = logFile
	} else {
		output = os.Stderr
	}

	slog.SetDefault(slog.New(newHandler(output, level)))
	return logFilePath, nil
}

// Disable discards all log output. Used when --verbose is not set.
func Disable() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	})))
}

// SetupForTesting routes slog to w for the duration of the test.
//
//	var buf bytes.Buffer
//	logsetup.SetupForTesting(t, &buf, slog.LevelDebug)
//	runUpload()
//	assert.Contains(t, buf.String(), "Uploading chunk")
func SetupForTesting(t *testing.T, w io.Writer, level slog.Level) {
	originalLogger := slog.Default()
	slog.SetDefault(slog.New(newHandler(w, level)))

	t.Cleanup(func() {
		slog.SetDefault(originalLogger)
	})
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	})
}

// redact masks credential-bearing attributes.
func redact(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}
	return a
}
