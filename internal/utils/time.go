package utils

import (
	"strings"
	"time"
)

const layoutDateTime = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	layoutDateTime,
	"2006-01-02T15:04:05",
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseTimestamp accepts the timestamp formats the fare backend is known to send.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a backend timestamp for display in local time,
// falling back to the raw text when it cannot be parsed.
func FormatTimestamp(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.In(time.Local).Format(layoutDateTime)
}
