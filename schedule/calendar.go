package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granular calendar point
// =============================================================================

// Date is a calendar day. It is a plain value type so it can serve as a map
// key; all arithmetic goes through time.Time in UTC.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a normalized Date (Feb 30 becomes Mar 2, matching
// time.Date semantics).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }
func (d Date) After(other Date) bool  { return d.Time().After(other.Time()) }
func (d Date) Equal(other Date) bool  { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

// Properties
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) IsZero() bool          { return d == Date{} }

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// DaysBetween returns the signed number of days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

// =============================================================================
// DATE RANGE - Inclusive [Start, End] interval
// =============================================================================

// DateRange is an inclusive start/end date pair. A single-day range
// (Start == End) is valid.
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange validates and builds a range. Returns ErrInvalidRange when
// start is after end.
func NewDateRange(start, end Date) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// MonthRange covers a whole calendar month.
func MonthRange(year int, month time.Month) DateRange {
	start := NewDate(year, month, 1)
	end := DateOf(start.Time().AddDate(0, 1, -1))
	return DateRange{Start: start, End: end}
}

// YearRange covers a whole calendar year.
func YearRange(year int) DateRange {
	return DateRange{
		Start: NewDate(year, time.January, 1),
		End:   NewDate(year, time.December, 31),
	}
}

// Validate reports ErrInvalidRange when the range is inverted.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s after %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Contains returns true if the date falls within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Len returns the number of days in the range (1 for a single-day range).
func (r DateRange) Len() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Days returns every day in the range in chronological order.
func (r DateRange) Days() []Date {
	days := make([]Date, 0, r.Len())
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
