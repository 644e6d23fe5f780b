package date

import (
	"sync"
	"time"
)

// Market holidays are computed per-year on demand and cached process-wide.
// The lock only guards map access: a cache miss recomputes outside the
// lock, so two goroutines may redundantly compute the same year rather
// than serialize on the computation.
var (
	holidayCacheMu sync.Mutex
	holidayCache   = map[int]map[Date]bool{}
)

func holidaysForYear(year int) map[Date]bool {
	holidayCacheMu.Lock()
	hs, ok := holidayCache[year]
	holidayCacheMu.Unlock()
	if ok {
		return hs
	}

	hs = computeMarketHolidays(year)

	holidayCacheMu.Lock()
	holidayCache[year] = hs
	holidayCacheMu.Unlock()
	return hs
}

// nthWeekdayOfMonth returns the date of the nth (1-based) weekday of the
// month, eg. the 3rd Monday of January.
func nthWeekdayOfMonth(year int, month time.Month, wd time.Weekday, n int) Date {
	first := New(year, month, 1)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDays(offset + (n-1)*7)
}

// lastWeekdayOfMonth returns the date of the final given weekday of the
// month, eg. the last Monday of May.
func lastWeekdayOfMonth(year int, month time.Month, wd time.Weekday) Date {
	last := New(year, month+1, 1).AddDays(-1)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDays(-offset)
}

// easterSunday computes Gregorian Easter using the anonymous Gregorian
// computus.
func easterSunday(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return New(year, time.Month(month), day)
}

// observed shifts a fixed-date holiday off the weekend: Saturday is
// observed Friday, Sunday is observed Monday.
func observed(d Date) Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}

// computeMarketHolidays returns the U.S. market holidays for a year.
func computeMarketHolidays(year int) map[Date]bool {
	hs := map[Date]bool{}
	add := func(d Date) { hs[d] = true }

	add(observed(New(year, time.January, 1)))
	add(nthWeekdayOfMonth(year, time.January, time.Monday, 3))  // MLK Day
	add(nthWeekdayOfMonth(year, time.February, time.Monday, 3)) // Presidents Day
	add(easterSunday(year).AddDays(-2))                         // Good Friday
	add(lastWeekdayOfMonth(year, time.May, time.Monday))        // Memorial Day
	if year >= 2022 {
		add(observed(New(year, time.June, 19))) // Juneteenth
	}
	add(observed(New(year, time.July, 4)))
	add(nthWeekdayOfMonth(year, time.September, time.Monday, 1))  // Labor Day
	add(nthWeekdayOfMonth(year, time.November, time.Thursday, 4)) // Thanksgiving
	add(observed(New(year, time.December, 25)))
	return hs
}

// IsBusinessDay reports whether d is a weekday that is not a market
// holiday.
func (d Date) IsBusinessDay() bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !holidaysForYear(d.Year())[d]
}

// PrecedingBusinessDay returns the closest business day strictly before d.
func (d Date) PrecedingBusinessDay() Date {
	b := d.AddDays(-1)
	for !b.IsBusinessDay() {
		b = b.AddDays(-1)
	}
	return b
}

// FollowingBusinessDay returns d if it is a business day, else the closest
// business day after it.
func (d Date) FollowingBusinessDay() Date {
	b := d
	for !b.IsBusinessDay() {
		b = b.AddDays(1)
	}
	return b
}
