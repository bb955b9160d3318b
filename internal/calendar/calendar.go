// Package calendar provides the day-granularity date used to key logs and profiles.
package calendar

import (
	"strings"
	"time"

	"github.com/hpungsan/yada/internal/errors"
)

// Layout is the canonical text form of a Date.
const Layout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form.
// The canonical form sorts lexicographically in chronological order.
type Date string

// Parse validates s and returns its canonical Date.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewInvalidRequest("date is required")
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", errors.NewInvalidRequest("date must be YYYY-MM-DD: " + s)
	}
	return FromTime(t), nil
}

// MustParse is Parse for constants in tests and seed data.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the Date of t in t's location.
func FromTime(t time.Time) Date {
	return Date(t.Format(Layout))
}

// Today returns the local date according to now.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return FromTime(now())
}

// String returns the canonical text form.
func (d Date) String() string {
	return string(d)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d < o
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return d
	}
	return FromTime(t.AddDate(0, 0, n))
}
