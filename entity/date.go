package entity

import (
	"fmt"
	"time"
)

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the calendar date of t.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Temporal is either an exact date or an interval with optional bounds.
// Exact and bounds are never set together.
type Temporal struct {
	Exact    *Date `json:"exact,omitempty"`
	Earliest *Date `json:"earliest,omitempty"`
	Latest   *Date `json:"latest,omitempty"`
}

// ExactTemporal returns a temporal value for a single known date.
func ExactTemporal(d Date) Temporal {
	return Temporal{Exact: &d}
}

// IntervalTemporal returns a temporal value bounded by earliest and latest.
// A nil bound is unknown. Equal bounds collapse into an exact date.
func IntervalTemporal(earliest, latest *Date) Temporal {
	if earliest != nil && latest != nil && *earliest == *latest {
		return ExactTemporal(*earliest)
	}
	return Temporal{Earliest: earliest, Latest: latest}
}

// IsZero reports whether nothing is known about the time.
func (t Temporal) IsZero() bool {
	return t.Exact == nil && t.Earliest == nil && t.Latest == nil
}

// YearLabel renders the temporal value for use in event labels: "1650",
// "ca. 1600-1650", "ca. 1600-?", "ca. ?-1650" or "?".
func (t Temporal) YearLabel() string {
	switch {
	case t.Exact != nil:
		return fmt.Sprintf("%04d", t.Exact.Year)
	case t.Earliest != nil && t.Latest != nil:
		return fmt.Sprintf("ca. %04d-%04d", t.Earliest.Year, t.Latest.Year)
	case t.Earliest != nil:
		return fmt.Sprintf("ca. %04d-?", t.Earliest.Year)
	case t.Latest != nil:
		return fmt.Sprintf("ca. ?-%04d", t.Latest.Year)
	default:
		return "?"
	}
}
