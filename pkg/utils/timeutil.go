package utils

import (
	"time"
)

// DateLayout is the calendar-date layout used at every boundary.
const DateLayout = "2006-01-02"

// Now is the wall clock used for relative day counts. Tests replace it.
var Now = time.Now

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	return DateOf(Now())
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads the leading YYYY-MM-DD of s. Timestamps such as
// "2026-11-20T00:00:00" are accepted. It reports false instead of failing,
// so callers can skip values that do not parse.
func ParseDate(s string) (time.Time, bool) {
	if len(s) < len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateStrict parses s as exactly YYYY-MM-DD.
func ParseDateStrict(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the whole calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// DaysUntil returns the calendar days from today to t.
func DaysUntil(t time.Time) int {
	return DaysBetween(Today(), t)
}
