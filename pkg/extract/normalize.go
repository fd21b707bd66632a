package extract

import (
	"fmt"
	"strconv"
	"time"

	"github.com/VictorBaumgartner/ExtractTime/pkg/catalog"
)

const (
	minYear = 1
	maxYear = 9999
)

// NormalizeOptions controls date normalization.
type NormalizeOptions struct {
	// ResolveMonthNames looks a non-numeric month of a 3-field candidate up
	// in the month table, so "20-avril-2025" resolves. Off by default: all
	// three fields must then be integers.
	ResolveMonthNames bool
}

// NormalizeDate turns a candidate into a calendar date.
//
// Three fields read as (day, month, year) whatever pattern produced them and
// must all be integers unless opts.ResolveMonthNames is set. Four fields read
// as (weekday, day, month name, year); the weekday is not checked against the
// resulting date. Any failure is reported in the outcome's Err.
func NormalizeDate(cat *catalog.Catalog, c DateCandidate, opts NormalizeOptions) DateOutcome {
	out := DateOutcome{Candidate: c}

	var dayStr, monthStr, yearStr string
	named := false
	switch len(c.Fields) {
	case 3:
		dayStr, monthStr, yearStr = c.Fields[0], c.Fields[1], c.Fields[2]
	case 4:
		dayStr, monthStr, yearStr = c.Fields[1], c.Fields[2], c.Fields[3]
		named = true
	default:
		out.Err = fmt.Errorf("%w: %d fields", ErrUnresolvableDate, len(c.Fields))
		return out
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		out.Err = fmt.Errorf("%w: day %q is not a number", ErrUnresolvableDate, dayStr)
		return out
	}

	month, err := resolveMonth(cat, monthStr, named, opts.ResolveMonthNames)
	if err != nil {
		out.Err = err
		return out
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		out.Err = fmt.Errorf("%w: year %q is not a number", ErrUnresolvableDate, yearStr)
		return out
	}

	d, err := newCalendarDate(year, month, day)
	if err != nil {
		out.Err = err
		return out
	}
	out.Date = d
	return out
}

func resolveMonth(cat *catalog.Catalog, s string, named, lookupNames bool) (int, error) {
	if !named {
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		if !lookupNames {
			return 0, fmt.Errorf("%w: month %q is not a number", ErrUnresolvableDate, s)
		}
	}
	n, ok := cat.Month(s)
	if !ok {
		return 0, fmt.Errorf("%w: unknown month %q", ErrUnresolvableDate, s)
	}
	return n, nil
}

// newCalendarDate rejects dates that time.Date would normalize, like 31/04.
func newCalendarDate(year, month, day int) (CalendarDate, error) {
	if year < minYear || year > maxYear {
		return CalendarDate{}, fmt.Errorf("%w: year %d out of range", ErrUnresolvableDate, year)
	}
	if month < 1 || month > 12 {
		return CalendarDate{}, fmt.Errorf("%w: month %d out of range", ErrUnresolvableDate, month)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day || t.Month() != time.Month(month) {
		return CalendarDate{}, fmt.Errorf("%w: %04d-%02d-%02d is not a calendar date", ErrUnresolvableDate, year, month, day)
	}
	return CalendarDate{Year: year, Month: time.Month(month), Day: day}, nil
}

// NormalizeTime turns a candidate into a clock time. One field is an hour
// with minute 0, two are hour and minute, four are a start and end
// hour/minute pair.
func NormalizeTime(c TimeCandidate) TimeOutcome {
	out := TimeOutcome{Candidate: c}

	nums := make([]int, len(c.Fields))
	for i, f := range c.Fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			out.Err = fmt.Errorf("%w: %q is not a number", ErrUnresolvableTime, f)
			return out
		}
		nums[i] = n
	}

	var ct ClockTime
	switch len(nums) {
	case 1:
		ct = ClockTime{Hour: nums[0]}
	case 2:
		ct = ClockTime{Hour: nums[0], Minute: nums[1]}
	case 4:
		ct = ClockTime{
			Hour:      nums[0],
			Minute:    nums[1],
			HasEnd:    true,
			EndHour:   nums[2],
			EndMinute: nums[3],
		}
	default:
		out.Err = fmt.Errorf("%w: %d fields", ErrUnresolvableTime, len(nums))
		return out
	}

	if err := checkClock(ct.Hour, ct.Minute); err != nil {
		out.Err = err
		return out
	}
	if ct.HasEnd {
		if err := checkClock(ct.EndHour, ct.EndMinute); err != nil {
			out.Err = err
			return out
		}
	}

	out.Time = ct
	return out
}

func checkClock(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %02d:%02d is not a clock time", ErrUnresolvableTime, hour, minute)
	}
	return nil
}
