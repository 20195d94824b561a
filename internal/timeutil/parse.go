// Package timeutil parses the --since filter of list commands.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// QueryLayout is the datetime format compared by $createdAt queries.
const QueryLayout = "2006-01-02T15:04:05.000-07:00"

var relativePattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

var absoluteLayouts = []struct {
	layout   string
	useLocal bool // no zone in the layout, read as local time
}{
	{time.RFC3339Nano, false},
	{time.RFC3339, false},
	{time.DateTime, true},
	{"2006-01-02 15:04:05.999", true},
	{time.DateOnly, true},
}

// ParseSince turns a relative duration ("30m", "2d", "1w") or an absolute
// timestamp into a UTC instant truncated to milliseconds. Relative values
// count back from now. Timestamps without a zone are read in loc.
func ParseSince(s string, now time.Time, loc *time.Location) (time.Time, error) {
	for _, f := range absoluteLayouts {
		var (
			t   time.Time
			err error
		)
		if f.useLocal {
			t, err = time.ParseInLocation(f.layout, s, loc)
		} else {
			t, err = time.Parse(f.layout, s)
		}
		if err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}

	match := relativePattern.FindStringSubmatch(s)
	if match == nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: use a relative time (30m, 12h, 2d, 1w) or a timestamp (2006-01-02, '2006-01-02 15:04:05', RFC3339)", s)
	}
	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number in --since: %w", err)
	}

	unit := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	}[match[2]]

	return now.Add(-time.Duration(amount) * unit).UTC().Truncate(time.Millisecond), nil
}

// FormatQuery renders t for use in a query value.
func FormatQuery(t time.Time) string {
	return t.UTC().Format(QueryLayout)
}
