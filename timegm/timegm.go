// Package timegm converts broken-down GMT calendar fields to Unix time.
//
// Timegm is the inverse of decomposing a Unix timestamp into UTC fields, like timegm(3)
// is the inverse of gmtime(3). It does not go through time.Location, walks no tables and
// keeps no state, so it can be called from any number of goroutines without coordination.
package timegm

import (
	"time"

	"github.com/ngrash/go-timegm/internal/unixtime"
)

// Tm is a broken-down date and time in GMT.
//
// The field layout follows struct tm, except that Year is the full year (1970, not 70).
// Month is 0-based, so 0 is January and 11 is December. Day is the 1-based day of the
// month. Leap seconds are not modeled, so Second is at most 59.
type Tm struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Timegm returns the number of seconds elapsed since 1970-01-01 00:00:00 UTC at tm.
// The result is negative for dates before 1970.
//
// Fields are not validated. For a month outside 0..11 or other fields outside their
// calendar ranges the result is unspecified, but Timegm never panics and always returns
// the same value for the same input.
func Timegm(tm Tm) int64 {
	year := int64(tm.Year)

	days := DaysSinceOrigin(year) - DaysSinceOrigin(unixtime.EpochYear)
	days += unixtime.DaysBeforeMonth(tm.Month, year)
	days += int64(tm.Day) - 1

	return days*unixtime.SecondsPerDay +
		int64(tm.Hour)*unixtime.SecondsPerHour +
		int64(tm.Minute)*unixtime.SecondsPerMinute +
		int64(tm.Second)
}

// DaysSinceOrigin returns the number of days from the fictitious date 0000-01-01 to
// January 1st of year, in the proleptic Gregorian calendar.
// Only differences between two results are meaningful.
func DaysSinceOrigin(year int64) int64 {
	return unixtime.DaysSinceOrigin(year)
}

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int64) bool {
	return unixtime.IsLeapYear(year)
}

// DaysIn returns the number of days in month (0 = January) of year.
func DaysIn(month int, year int64) int {
	return unixtime.DaysIn(month, year)
}

// FromTime decomposes t into GMT fields.
func FromTime(t time.Time) Tm {
	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	return Tm{
		Year:   year,
		Month:  int(month) - 1,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
	}
}

// Time returns the instant tm denotes, in UTC.
func (tm Tm) Time() time.Time {
	return time.Unix(Timegm(tm), 0).UTC()
}
