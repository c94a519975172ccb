package timecalc

import (
	"fmt"
	"time"
)

// WeekRange returns the Monday and Sunday of the ISO week containing d.
func WeekRange(d Date) (Date, Date) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := d.AddDays(-(wd - 1))
	return monday, monday.AddDays(6)
}

// MonthRange returns the first and last day of d's month.
func MonthRange(d Date) (Date, Date) {
	first := d.StartOfMonth()
	last := DateOf(first.Time().AddDate(0, 1, -1))
	return first, last
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(d Date) string {
	year, week := d.Time().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// ClockOf returns the wall-clock hour and minute of t, dropping seconds.
func ClockOf(t time.Time) Clock {
	return Clock{Hours: t.Hour(), Minutes: t.Minute()}
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOf(a) == DateOf(b)
}
