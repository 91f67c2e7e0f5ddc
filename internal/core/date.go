package core

import (
	"strings"
	"time"
)

// Dates are plain YYYY-MM-DD strings throughout. Lexicographic order on
// them equals chronological order, which the stores rely on for
// newest-first sorting and which makes month bucketing a prefix match.
// A MonthKey is the YYYY-MM prefix identifying a calendar month.

const (
	dateLayout     = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// MonthKeyOf returns the month key of a date string. No calendar
// validation: a malformed date yields a malformed but consistent key.
func MonthKeyOf(date string) string {
	if len(date) < len(monthKeyLayout) {
		return date
	}
	return date[:len(monthKeyLayout)]
}

// InMonth reports whether date falls in the month identified by
// monthKey. Absent or malformed dates are simply not in any month.
func InMonth(date, monthKey string) bool {
	if date == "" || monthKey == "" {
		return false
	}
	return strings.HasPrefix(date, monthKey)
}

// splitDate extracts the year/month/day integers from a YYYY-MM-DD
// string. Calendar dates stay plain (year, month, day) triples here;
// they are never turned into timezone-aware instants, so a date can
// never shift to a neighbouring day.
func splitDate(date string) (year, month, day int, ok bool) {
	if len(date) != len(dateLayout) || date[4] != '-' || date[7] != '-' {
		return 0, 0, 0, false
	}
	parse := func(s string) (int, bool) {
		n := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				return 0, false
			}
			n = n*10 + int(r-'0')
		}
		return n, true
	}
	y, ok1 := parse(date[0:4])
	m, ok2 := parse(date[5:7])
	d, ok3 := parse(date[8:10])
	if !ok1 || !ok2 || !ok3 || m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, 0, false
	}
	// Reject days that only normalise into the next month (e.g. Feb 31).
	if t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC); t.Day() != d {
		return 0, 0, 0, false
	}
	return y, m, d, true
}

// WeekdayOf returns the day of week (0=Sunday) of a date string, or
// ok=false when the date is malformed.
func WeekdayOf(date string) (int, bool) {
	y, m, d, ok := splitDate(date)
	if !ok {
		return 0, false
	}
	return int(time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).Weekday()), true
}

// DayOf returns the day-of-month of a date string, or ok=false when the
// date is malformed.
func DayOf(date string) (int, bool) {
	_, _, d, ok := splitDate(date)
	return d, ok
}

// DaysInMonth returns the calendar day count (28-31) of a month key, or
// 0 for a malformed key.
func DaysInMonth(monthKey string) int {
	t, err := time.Parse(monthKeyLayout, monthKey)
	if err != nil {
		return 0
	}
	// Day zero of the following month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AsOfDay bounds how much of a month counts as elapsed: the current
// day-of-month when monthKey is now's month, otherwise the full month.
func AsOfDay(monthKey string, now time.Time) int {
	if monthKey == now.Format(monthKeyLayout) {
		return now.Day()
	}
	return DaysInMonth(monthKey)
}

// CurrentMonthKey returns now's month key.
func CurrentMonthKey(now time.Time) string {
	return now.Format(monthKeyLayout)
}

// PreviousMonthKey returns the month key of the month before now's.
func PreviousMonthKey(now time.Time) string {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1).Format(monthKeyLayout)
}

// ValidDate reports whether date is a well-formed YYYY-MM-DD calendar
// date.
func ValidDate(date string) bool {
	_, _, _, ok := splitDate(date)
	return ok
}
