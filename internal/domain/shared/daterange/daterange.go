package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxLen caps a range at roughly ten years of days.
const MaxLen = 3660

var (
	ErrInvalidRange = errors.New("daterange: end date must not be before start date")
	ErrInvalidDate  = fmt.Errorf("%w: malformed date", ErrInvalidRange)
	ErrRangeTooLong = fmt.Errorf("%w: range exceeds %d days", ErrInvalidRange, MaxLen)
)

const (
	layout     = "2006-01-02"
	secondsDay = 24 * 60 * 60
)

// Date is a civil calendar day without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the UTC calendar day of now.
func Today(now time.Time) Date {
	return DateOf(now)
}

// Parse accepts YYYY-MM-DD or an RFC3339 timestamp.
func Parse(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(layout, value); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// MustParse panics on malformed input; for fixtures and tests.
func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) String() string {
	return d.Time().Format(layout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range is an inclusive interval of whole days [Start, End].
type Range struct {
	Start Date
	End   Date
}

func New(start, end Date) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// FromTimes builds a range ignoring time of day.
func FromTimes(start, end time.Time) (Range, error) {
	if start.IsZero() || end.IsZero() {
		return Range{}, ErrInvalidRange
	}
	return New(DateOf(start), DateOf(end))
}

func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrInvalidRange
	}
	if r.End.Before(r.Start) {
		return ErrInvalidRange
	}
	if r.span() > MaxLen {
		return ErrRangeTooLong
	}
	return nil
}

// span counts days inclusively from midnight UTC timestamps, which never
// saturate the way time.Duration does.
func (r Range) span() int64 {
	return (r.End.Time().Unix()-r.Start.Time().Unix())/secondsDay + 1
}

// Len counts days inclusively; a same-day range has length 1. Invalid ranges
// have length 0.
func (r Range) Len() int {
	if r.Validate() != nil {
		return 0
	}
	return int(r.span())
}

// Days expands the range into each calendar day from Start to End.
func (r Range) Days() []Date {
	n := r.Len()
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, r.Start.AddDays(i))
	}
	return days
}

func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r Range) Overlaps(other Range) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}
