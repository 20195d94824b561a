package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestColorizeStatus(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	tcs := []struct {
		status   string
		expected string
	}{
		{status: "ready", expected: "Ready"},
		{status: "building", expected: "Building"},
		{status: "failed", expected: "Failed"},
		{status: "some_status", expected: "Some Status"},
	}

	for _, tc := range tcs {
		t.Run(tc.status, func(t *testing.T) {
			assert.Equal(t, tc.expected, ColorizeStatus(tc.status))
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512B", FormatSize(512))
	assert.Equal(t, "5MiB", FormatSize(5*1024*1024))
	assert.Equal(t, "1.5GiB", FormatSize(1536*1024*1024))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "-", FormatTimestamp(time.Time{}))
	assert.NotEqual(t, "-", FormatTimestamp(time.Now()))
}

func TestFormatError(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	assert.Empty(t, FormatError(nil))
	assert.Equal(t, "✗ Error: boom\n", FormatError(errors.New("boom")))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []string{"ID", "Name"}, [][]string{{"f1", "cat.png"}, {"f2", "dog.png"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "cat.png")
	assert.Contains(t, lines[2], "dog.png")
}
