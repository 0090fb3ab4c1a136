package mapper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/c360studio/artgraph/entity"
)

// ErrInvalidDate is returned for date strings that cannot be normalized.
var ErrInvalidDate = errors.New("invalid date")

// NormalizeDates turns a raw begin/end pair into a temporal value.
//
// A year expands to its first day as a begin bound and its last day as an
// end bound; a year-month likewise to the first or last day of the month.
// Full dates are used as they are and anything else goes through dateparse.
// Identical raw values, or bounds equal after expansion, give an exact date.
//
// When one bound cannot be parsed the returned value still carries the
// other, and the error names the bad input.
func NormalizeDates(begin, end string) (entity.Temporal, error) {
	begin = strings.TrimSpace(begin)
	end = strings.TrimSpace(end)

	if begin != "" && begin == end {
		d, err := expandDate(begin, true)
		if err != nil {
			return entity.Temporal{}, err
		}
		return entity.ExactTemporal(d), nil
	}

	var errs []error
	var earliest, latest *entity.Date
	if begin != "" {
		if d, err := expandDate(begin, true); err != nil {
			errs = append(errs, err)
		} else {
			earliest = &d
		}
	}
	if end != "" {
		if d, err := expandDate(end, false); err != nil {
			errs = append(errs, err)
		} else {
			latest = &d
		}
	}
	return entity.IntervalTemporal(earliest, latest), errors.Join(errs...)
}

func expandDate(raw string, begin bool) (entity.Date, error) {
	switch len(raw) {
	case 4:
		if year, err := strconv.Atoi(raw); err == nil {
			if begin {
				return entity.Date{Year: year, Month: time.January, Day: 1}, nil
			}
			return entity.Date{Year: year, Month: time.December, Day: 31}, nil
		}
	case 7:
		if t, err := time.Parse("2006-01", raw); err == nil {
			if begin {
				return entity.NewDate(t), nil
			}
			// Day 0 of the next month is the last day of this one.
			return entity.NewDate(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)), nil
		}
	case 10:
		if d, err := entity.ParseDate(raw); err == nil {
			return d, nil
		}
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return entity.Date{}, fmt.Errorf("%w %q", ErrInvalidDate, raw)
	}
	return entity.NewDate(t), nil
}

// parseTimestamp parses a modification timestamp.
func parseTimestamp(raw string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, raw)
	}
	return t.UTC(), nil
}
