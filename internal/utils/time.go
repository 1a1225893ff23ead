package utils

import "time"

// FormatDate formats a time.Time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a date string in YYYY-MM-DD format
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// DateOnly truncates a time to its calendar date (time-of-day zeroed),
// keeping the location. All due-date comparisons are done on truncated values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date. The
// comparison is by date components, so operands in different locations
// compare by what their own calendars say, not by instant.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateAfter reports whether a's calendar date falls strictly after b's,
// regardless of location
func DateAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}

// IsWeekend reports whether t falls on a Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDays returns the next n weekday dates strictly after from,
// computed by advancing one calendar day at a time and skipping Saturdays
// and Sundays. Results are date-truncated.
func NextBusinessDays(from time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := DateOnly(from)
	for len(days) < n {
		d = d.AddDate(0, 0, 1)
		if IsWeekend(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}
