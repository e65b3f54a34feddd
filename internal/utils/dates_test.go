package utils

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2026-03-15")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	if day.Year() != 2026 || day.Month() != time.March || day.Day() != 15 {
		t.Errorf("parsed day = %v", day)
	}
	if day.Location() != time.UTC || day.Hour() != 0 {
		t.Errorf("expected UTC midnight, got %v", day)
	}

	for _, bad := range []string{"", "15-03-2026", "2026/03/15", "2026-13-01", "yesterday"} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("ParseDay(%q) accepted invalid input", bad)
		}
	}
}

func TestFormatDayRoundTrip(t *testing.T) {
	day, _ := ParseDay("2026-03-15")
	if got := FormatDay(day); got != "2026-03-15" {
		t.Errorf("FormatDay = %q", got)
	}

	// Non-UTC times format as their UTC day
	loc := time.FixedZone("UTC+5", 5*3600)
	late := time.Date(2026, 3, 16, 2, 0, 0, 0, loc)
	if got := FormatDay(late); got != "2026-03-15" {
		t.Errorf("FormatDay across zones = %q, want 2026-03-15", got)
	}
}

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2026, 3, 15, 18, 42, 7, 123, time.UTC)
	got := TruncateToDay(ts)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("TruncateToDay = %v, want %v", got, want)
	}
}

func TestAddDaysAcrossMonthEnd(t *testing.T) {
	day, _ := ParseDay("2026-01-31")
	if got := FormatDay(AddDays(day, 1)); got != "2026-02-01" {
		t.Errorf("AddDays(+1) = %q", got)
	}
	if got := FormatDay(AddDays(day, -31)); got != "2025-12-31" {
		t.Errorf("AddDays(-31) = %q", got)
	}
}

func TestParseClock(t *testing.T) {
	hour, min, sec, err := ParseClock("09:30")
	if err != nil || hour != 9 || min != 30 || sec != 0 {
		t.Errorf("ParseClock(09:30) = %d:%d:%d, err %v", hour, min, sec, err)
	}

	hour, min, sec, err = ParseClock("23:59:59")
	if err != nil || hour != 23 || min != 59 || sec != 59 {
		t.Errorf("ParseClock(23:59:59) = %d:%d:%d, err %v", hour, min, sec, err)
	}

	for _, bad := range []string{"", "25:00", "9am", "12-30"} {
		if _, _, _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q) accepted invalid input", bad)
		}
	}
}
