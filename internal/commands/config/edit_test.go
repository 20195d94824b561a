package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditorCommand(t *testing.T) {
	tcs := []struct {
		name     string
		env      map[string]string
		goos     string
		expected []string
	}{
		{name: "visual wins", env: map[string]string{"VISUAL": "code --wait", "EDITOR": "nano"}, goos: "linux", expected: []string{"code", "--wait"}},
		{name: "editor", env: map[string]string{"EDITOR": "nano"}, goos: "linux", expected: []string{"nano"}},
		{name: "blank values are skipped", env: map[string]string{"VISUAL": "  ", "EDITOR": "hx"}, goos: "darwin", expected: []string{"hx"}},
		{name: "unix fallback", goos: "linux", expected: []string{"vi"}},
		{name: "windows fallback", goos: "windows", expected: []string{"notepad"}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			getenv := func(key string) string { return tc.env[key] }
			assert.Equal(t, tc.expected, editorCommand(getenv, tc.goos))
		})
	}
}
