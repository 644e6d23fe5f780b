package date

import (
	"fmt"
	"time"
)

const DefaultFormat = "2006-01-02"

// Date is a calendar date encoded as an integer YYYYMMDD (eg. 20240131).
// The encoding sorts chronologically, so Dates compare with the ordinary
// integer operators.
type Date int

// New returns the Date for the given (normalized) year, month and day.
func New(year int, month time.Month, day int) Date {
	// Normalize through time.Date so e.g. Jan 32 becomes Feb 1.
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date(y*10000 + int(m)*100 + d)
}

var TodaysDateForTest Date = 0

func Today() Date {
	if TodaysDateForTest != 0 {
		return TodaysDateForTest
	}
	return FromTime(time.Now())
}

func Parse(dateStr string) (Date, error) {
	tm, err := time.Parse(DefaultFormat, dateStr)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q (want %s): %w", dateStr, DefaultFormat, err)
	}
	return FromTime(tm), nil
}

func MustParse(dateStr string) Date {
	d, err := Parse(dateStr)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) Year() int         { return int(d) / 10000 }
func (d Date) Month() time.Month { return time.Month(int(d) / 100 % 100) }
func (d Date) Day() int          { return int(d) % 100 }

// Time returns the canonical representation of the date: midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

func (d Date) Before(o Date) bool { return d < o }
func (d Date) After(o Date) bool  { return d > o }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

// Serial day numbering, as used by the XIRR solver and Modified-Dietz day
// weighting. Day 1 is 1900-01-01, matching the spreadsheet convention for
// all dates from 1900-03-01 onward.
const serialEpochOffset = 25569 // serial number of 1970-01-01

// Serial returns the serial day number of d.
func (d Date) Serial() int {
	return int(d.Time().Unix()/86400) + serialEpochOffset
}

// FromSerial is the inverse of Serial for the full supported range.
func FromSerial(serial int) Date {
	return FromTime(time.Unix(int64(serial-serialEpochOffset)*86400, 0).UTC())
}

// AddDays returns the date n calendar days after d (before, if negative).
func (d Date) AddDays(n int) Date {
	return FromSerial(d.Serial() + n)
}

// DaysBetween returns the number of calendar days from a to b (negative if
// b precedes a).
func DaysBetween(a Date, b Date) int {
	return b.Serial() - a.Serial()
}
