// Package week provides the calendar-week windows the task and KPI
// services partition dates by. All dates are calendar days (UTC midnight);
// weeks anchor on Monday per ISO-8601.
package week

import "time"

// Day strips the time component, leaving the UTC calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Monday returns the Monday of the week containing t.
func Monday(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Window is an inclusive calendar-date range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Operating is the Monday..Sunday week used for the operator backlog
// partition and KPI autonomy derivation.
func Operating(t time.Time) Window {
	monday := Monday(t)
	return Window{Start: monday, End: monday.AddDate(0, 0, 6)}
}

// Business is the Monday..Friday week used by the management weekly view.
func Business(t time.Time) Window {
	monday := Monday(t)
	return Window{Start: monday, End: monday.AddDate(0, 0, 4)}
}

// DaysBetween returns the whole days from one calendar date to another.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
