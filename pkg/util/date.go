package util

import (
	"strconv"
	"time"
)

// ScheduleTimeLayout is the timestamp layout used by the league schedule
// export (day-first, minute precision, implicitly UTC).
const ScheduleTimeLayout = "02/01/2006 15:04"

// ParseTime tries RFC3339, RFC3339Nano, the schedule layout, and unix
// seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(ScheduleTimeLayout, s); err == nil {
		return t.UTC(), true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// DateKey formats a time as the YYYY-MM-DD key used for day-scoped lookups.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
