package util

import (
    "strconv"
    "time"
)

// DateLayout is the calendar-day format used for daily bars.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
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

// UnixDate converts unix seconds to the calendar day in UTC.
func UnixDate(ts int64) string {
    return time.Unix(ts, 0).UTC().Format(DateLayout)
}

// ValidDate reports whether s is a well-formed calendar day.
func ValidDate(s string) bool {
    _, err := time.Parse(DateLayout, s)
    return err == nil
}
