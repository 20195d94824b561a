package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-units"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// ColorizeStatus title-cases a server status word and colors it by meaning.
func ColorizeStatus(status string) string {
	display := titleCaser.String(strings.ReplaceAll(status, "_", " "))

	switch strings.ToLower(status) {
	case "ready", "active", "sent", "completed":
		return GreenStyle.Render(display)
	case "waiting", "pending", "scheduled", "draft":
		return PendingStyle.Render(display)
	case "processing", "building", "uploading", "deploying":
		return MagentaStyle.Render(display)
	case "failed", "canceled", "cancelled":
		return RedStyle.Render(display)
	default:
		return BoldStyle.Render(display)
	}
}

// FormatSize renders a byte count like "5MiB".
func FormatSize(bytes int64) string {
	return units.BytesSize(float64(bytes))
}

// FormatTimestamp formats a time.Time to a human-readable string
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatError formats an error message with styling. The trailing newline
// keeps Bubbletea from overwriting the last line on exit.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return ErrorStyle.Render(fmt.Sprintf("✗ Error: %s", err.Error())) + "\n"
}
