package utils

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar days used across the API
const DayFormat = "2006-01-02"

// ParseDay parses a "YYYY-MM-DD" string into a UTC midnight time
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// FormatDay renders a time as its "YYYY-MM-DD" calendar day in UTC
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Today returns the current UTC calendar day at midnight
func Today() time.Time {
	return TruncateToDay(time.Now())
}

// TruncateToDay drops the time-of-day component, keeping the UTC day
func TruncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a day by n calendar days
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// ParseClock parses "HH:MM" or "HH:MM:SS" time-of-day strings
func ParseClock(s string) (hour, min, sec int, err error) {
	if t, perr := time.Parse("15:04:05", s); perr == nil {
		return t.Hour(), t.Minute(), t.Second(), nil
	}
	t, perr := time.Parse("15:04", s)
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", s)
	}
	return t.Hour(), t.Minute(), 0, nil
}
