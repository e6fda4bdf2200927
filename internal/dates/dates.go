// Package dates holds the date-only arithmetic the planner is built on.
// Calendar days are passed around as ISO "2006-01-02" strings; this package
// is the only place that parses them.
package dates

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

// ParseDay parses an ISO YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// FormatDay renders a time as its ISO calendar day.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// Nights returns the number of nights between check-in and check-out.
// A same-day stay still counts as one night.
func Nights(checkIn, checkOut string) (int, error) {
	in, err := ParseDay(checkIn)
	if err != nil {
		return 0, err
	}
	out, err := ParseDay(checkOut)
	if err != nil {
		return 0, err
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		n = 1
	}
	return n, nil
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(year int, month time.Month) (first, last time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	_, last := MonthBounds(year, month)
	return last.Day()
}

// FirstWeekdayIndex returns the weekday of the 1st of the month,
// 0 = Sunday, matching the calendar grid's leading empty cells.
func FirstWeekdayIndex(year int, month time.Month) int {
	first, _ := MonthBounds(year, month)
	return int(first.Weekday())
}

// AddMonths steps the displayed month by delta, normalizing to day 1 first
// so stepping from the 31st can never roll over an extra month.
func AddMonths(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}
