// Package timeutil provides calendar date helpers for deadline and event
// handling. All calculations are done on UTC calendar days so that the
// server and the record store agree on date boundaries.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDate is the wire date format used by the record store (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// StartOfDay returns the start of the UTC calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of the UTC calendar day containing t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// IsSameDay checks if two times fall on the same UTC calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := t1.UTC(), t2.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the absolute number of calendar days between two times.
func DaysBetween(t1, t2 time.Time) int {
	days := int(StartOfDay(t2).Sub(StartOfDay(t1)).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// DaysUntil returns the number of calendar days from now until t. Negative
// for past dates.
func DaysUntil(t time.Time) int {
	return int(StartOfDay(t).Sub(StartOfDay(time.Now())).Hours() / 24)
}

// WithinDays reports whether t falls between now and n calendar days from
// now, inclusive. Past dates are never within.
func WithinDays(t time.Time, n int) bool {
	d := DaysUntil(t)
	return d >= 0 && d <= n
}

// IsPast reports whether t falls on a calendar day before today.
func IsPast(t time.Time) bool {
	return DaysUntil(t) < 0
}

// RelativeDate returns the start of the day daysOffset calendar days from
// now. Negative offsets yield past dates.
func RelativeDate(daysOffset int) time.Time {
	return StartOfDay(time.Now()).AddDate(0, 0, daysOffset)
}

// RelativeLabel returns a short human-readable label for a date relative to
// today, such as "today", "tomorrow", or "in 5 days".
func RelativeLabel(t time.Time) string {
	switch d := DaysUntil(t); {
	case d == 0:
		return "today"
	case d == 1:
		return "tomorrow"
	case d == -1:
		return "yesterday"
	case d > 1:
		return fmt.Sprintf("in %d days", d)
	default:
		return fmt.Sprintf("%d days ago", -d)
	}
}

// FormatDateStr formats a time as a YYYY-MM-DD date string in UTC.
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ParseDate parses a YYYY-MM-DD date string as a UTC date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, time.UTC)
}
