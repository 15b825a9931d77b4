package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

// Date is a calendar date (YYYY-MM-DD). The zero value is "".
// Lexical order equals chronological order.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates and normalizes a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", Errorf(ErrValidation, "invalid date %q, want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// Start returns midnight at the start of d in loc.
func (d Date) Start(loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(DateLayout, string(d), loc)
	return t
}

// AddDays shifts d by n calendar days.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Month returns the "YYYY-MM" prefix.
func (d Date) Month() string {
	if len(d) < 7 {
		return ""
	}
	return string(d[:7])
}

func (d Date) String() string { return string(d) }

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d == "" }
