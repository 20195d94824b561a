package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	pst := time.FixedZone("PST", -8*3600)

	tcs := []struct {
		name          string
		input         string
		expected      time.Time
		expectedError bool
	}{
		{name: "RFC3339 with Z", input: "2024-01-15T10:30:00Z", expected: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{name: "RFC3339 with offset", input: "2024-01-15T10:30:00-05:00", expected: time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC)},
		{name: "RFC3339Nano truncated to millis", input: "2024-01-15T10:30:00.123456789Z", expected: time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)},
		{name: "DateTime in local zone", input: "2024-01-15 10:30:00", expected: time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)},
		{name: "DateTime with millis", input: "2024-01-15 10:30:00.456", expected: time.Date(2024, 1, 15, 18, 30, 0, 456000000, time.UTC)},
		{name: "DateOnly is local midnight", input: "2024-01-15", expected: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)},
		{name: "seconds", input: "45s", expected: now.Add(-45 * time.Second)},
		{name: "minutes", input: "30m", expected: now.Add(-30 * time.Minute)},
		{name: "hours", input: "1h", expected: now.Add(-time.Hour)},
		{name: "days", input: "2d", expected: now.Add(-48 * time.Hour)},
		{name: "weeks", input: "1w", expected: now.Add(-7 * 24 * time.Hour)},
		{name: "unknown unit", input: "3y", expectedError: true},
		{name: "negative", input: "-1h", expectedError: true},
		{name: "empty", input: "", expectedError: true},
		{name: "garbage", input: "yesterday", expectedError: true},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSince(tc.input, now, pst)
			if tc.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid --since")
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "expected %s, got %s", tc.expected, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestFormatQuery(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-01-15T09:30:00.123+00:00", FormatQuery(ts))
}
