package domain

import "time"

// DateLayout is the calendar-day format used for dates at rest.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar day, expressed as midnight UTC.
// The day is taken in t's own location so a local "now" keeps its date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func dayPtr(t time.Time) *time.Time {
	d := Day(t)
	return &d
}
