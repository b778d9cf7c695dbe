package core

import (
	"math"
	"time"
)

// startOfDay normalizes a timestamp to UTC midnight. All calendar-day keys
// in the attendance ledger use this form.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// inclusiveDays counts the calendar days in [start, end] with both
// endpoints included, e.g. Jan 5 to Jan 8 is 4 days.
func inclusiveDays(start, end time.Time) int {
	start = startOfDay(start)
	end = startOfDay(end)
	return int(end.Sub(start).Hours()/24) + 1
}

// isWeekend reports whether the day is a Saturday or Sunday.
func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// hoursBetween returns the elapsed hours between two timestamps, rounded to
// two decimals.
func hoursBetween(start, end time.Time) float64 {
	return math.Round(end.Sub(start).Hours()*100) / 100
}
