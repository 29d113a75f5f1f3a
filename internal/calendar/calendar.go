// Package calendar answers "what day is it" questions in the canonical
// timezone shared by every part of the app.
package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// Layout is the storage format for civil dates.
const Layout = "2006-01-02"

// Today returns the civil date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	return civil.DateOf(now.In(loc))
}

// StartOfDay returns midnight of d in loc.
func StartOfDay(d civil.Date, loc *time.Location) time.Time {
	return d.In(loc)
}

// DayBounds returns [start, end) of d in loc.
func DayBounds(d civil.Date, loc *time.Location) (time.Time, time.Time) {
	return StartOfDay(d, loc), StartOfDay(d.AddDays(1), loc)
}

// StartOfWeek returns the Sunday that opens the week containing d.
func StartOfWeek(d civil.Date, loc *time.Location) civil.Date {
	weekday := d.In(loc).Weekday()
	return d.AddDays(-int(weekday))
}

// MonthsBetween counts calendar months from "from" to "to", ignoring the
// day of month: Jan 31 → Feb 1 is one month.
func MonthsBetween(from, to civil.Date) int {
	return (to.Year-from.Year)*12 + int(to.Month) - int(from.Month)
}

// DaysBetween counts whole days from "from" to "to".
func DaysBetween(from, to civil.Date) int {
	return to.DaysSince(from)
}

// IsWeekend reports whether t falls on Saturday or Sunday in loc.
func IsWeekend(t time.Time, loc *time.Location) bool {
	switch t.In(loc).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// Parse reads a YYYY-MM-DD string.
func Parse(value string) (civil.Date, error) {
	return civil.ParseDate(value)
}

// NextMonthlyOccurrence returns the first date on or after today whose day
// of month is day, clamped to the last day of shorter months.
func NextMonthlyOccurrence(today civil.Date, day int) civil.Date {
	candidate := clampedDate(today.Year, today.Month, day)
	if candidate.Before(today) {
		next := civil.Date{Year: today.Year, Month: today.Month, Day: 1}.AddDays(32)
		candidate = clampedDate(next.Year, next.Month, day)
	}
	return candidate
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Move to next month, roll back a day.
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

func clampedDate(year int, month time.Month, day int) civil.Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}
