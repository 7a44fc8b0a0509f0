// Package calendar implements weekday-only date arithmetic for daily bars.
// Exchange holidays are not modelled.
package calendar

import "time"

// DateLayout is the wire and display format for calendar dates.
const DateLayout = "2006-01-02"

// Date truncates t to its calendar date at 00:00 UTC.
// The wall-clock date of t in its own location is kept.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse parses a YYYY-MM-DD string into a calendar date.
func Parse(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Format renders a calendar date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AdvanceBusinessDays moves date by n business days, skipping Saturdays
// and Sundays. Negative n moves backward. When date is itself on a
// weekend, reaching the adjacent weekday counts as the first step; with
// n == 0 a weekend date rolls forward to Monday.
func AdvanceBusinessDays(date time.Time, n int) time.Time {
	d := Date(date)

	if n == 0 {
		for !IsBusinessDay(d) {
			d = d.AddDate(0, 0, 1)
		}
		return d
	}

	step := 1
	if n < 0 {
		step = -1
		n = -n
	}

	for n > 0 {
		d = d.AddDate(0, 0, step)
		if IsBusinessDay(d) {
			n--
		}
	}
	return d
}

// Within reports whether the calendar date of t lies in [start, end].
func Within(t, start, end time.Time) bool {
	d := Date(t)
	return !d.Before(Date(start)) && !d.After(Date(end))
}
