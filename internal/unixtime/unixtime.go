// Package unixtime holds the calendar arithmetic behind timegm.Timegm.
//
// Nothing in this package depends on time.Location or on any lookup that scales with
// the input. Every function is a closed-form expression over int64 and is safe for
// concurrent use.
package unixtime

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour

	// EpochYear is the year of the Unix epoch, 1970-01-01 00:00:00 UTC.
	EpochYear = 1970

	// originBias is added to the year before the leap-day divisions so that the
	// quotients count leap years strictly before the year, with year 0 itself leap.
	originBias = 399
)

// DaysSinceOrigin returns the number of days between the fictitious date 0000-01-01 and
// January 1st of year in the proleptic Gregorian calendar. A year is a leap year if it is
// divisible by 4, except centuries not divisible by 400. Year 0 is a leap year.
//
// The difference DaysSinceOrigin(a) - DaysSinceOrigin(b) is the exact number of days
// between the start of year b and the start of year a, for any a and b.
//
// Day counts are int64. y*365 cannot overflow for any year whose start lies within the
// range of int64 epoch seconds (|year| below roughly 2.9e11), which is the widest range
// Timegm can express anyway.
func DaysSinceOrigin(year int64) int64 {
	y := year + originBias
	return year*365 +
		floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) -
		originBias/4 + originBias/100
}

// floorDiv divides a by b, rounding toward negative infinity.
// Go's / truncates toward zero, which differs for negative a.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// IsLeapYear determines if the year is a leap year.
func IsLeapYear(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month (0 = January) of year.
// Months outside 0..11 are reported as 31 days long.
func DaysIn(month int, year int64) int {
	switch month {
	case 1:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 3, 5, 8, 10:
		return 30
	}
	return 31
}

// monthOffsets packs, in 5 bits per month, the number of days the months before it
// have beyond 28 each, ignoring February 29th:
//
//	Jan 0, Feb 3, Mar 3, Apr 6, May 8, Jun 11, Jul 13, Aug 16, Sep 19, Oct 21, Nov 24, Dec 26
const monthOffsets uint64 = 0<<0 | 3<<5 | 3<<10 | 6<<15 | 8<<20 | 11<<25 |
	13<<30 | 16<<35 | 19<<40 | 21<<45 | 24<<50 | 26<<55

// MonthOffset returns the packed entry for month (0 = January).
//
// For months outside 0..11 the result is unspecified, but the lookup never panics:
// the shift count is unsigned and Go defines shifts past the width as zero.
func MonthOffset(month int) int64 {
	return int64(monthOffsets >> (uint64(month) * 5) & 0x1f)
}

// DaysBeforeMonth returns the number of days in year that precede the first day of
// month (0 = January).
func DaysBeforeMonth(month int, year int64) int64 {
	d := 28*int64(month) + MonthOffset(month)
	if month > 1 && IsLeapYear(year) {
		d++ // February 29th
	}
	return d
}
