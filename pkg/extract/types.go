// Package extract finds event dates and times in free-form French or English
// text and turns them into schedule records.
//
// Extraction runs in stages: date and time candidates are scanned pattern by
// pattern, a publication date stands in when the text holds no date at all,
// each candidate is normalized or dropped, and the surviving dates and times
// are crossed into records labelled by weekday and meridiem.
package extract

import (
	"fmt"
	"time"
)

// Output layouts.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// DateCandidate is a raw date fragment captured by one pattern.
type DateCandidate struct {
	// Pattern is the name of the catalog pattern that produced the candidate.
	Pattern string `json:"pattern"`

	// Fields are the captured groups in order. Three fields read as
	// (day, month, year); four as (weekday, day, month name, year).
	Fields []string `json:"fields"`
}

// TimeCandidate is a raw time fragment captured by one pattern.
type TimeCandidate struct {
	Pattern string   `json:"pattern"`
	Fields  []string `json:"fields"`
}

// CalendarDate is a validated Gregorian date.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// String returns the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// At returns the naive timestamp for the date at the given clock time.
func (d CalendarDate) At(hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, time.UTC)
}

// ClockTime is a validated start time with an optional end time.
type ClockTime struct {
	Hour   int
	Minute int

	// HasEnd is set for range expressions such as "10h30-12h30".
	HasEnd    bool
	EndHour   int
	EndMinute int
}

// Record is one extracted schedule entry.
type Record struct {
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     *string `json:"end_time"`
	StartColumn string  `json:"start_column"`
	EndColumn   string  `json:"end_column"`
}

// IsRange reports whether the record carries an end time.
func (r Record) IsRange() bool {
	return r.EndTime != nil
}

// StartAt parses the record's date and start time.
func (r Record) StartAt() (time.Time, error) {
	return time.Parse(DateLayout+" "+TimeLayout, r.Date+" "+r.StartTime)
}

// EndAt parses the record's date and end time. ok is false when the record
// has no end time.
func (r Record) EndAt() (t time.Time, ok bool, err error) {
	if r.EndTime == nil {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(DateLayout+" "+TimeLayout, r.Date+" "+*r.EndTime)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// DateOutcome is the result of normalizing one date candidate.
type DateOutcome struct {
	Candidate DateCandidate
	Date      CalendarDate
	Err       error
}

// OK reports whether the candidate resolved to a date.
func (o DateOutcome) OK() bool {
	return o.Err == nil
}

// TimeOutcome is the result of normalizing one time candidate.
type TimeOutcome struct {
	Candidate TimeCandidate
	Time      ClockTime
	Err       error
}

// OK reports whether the candidate resolved to a clock time.
func (o TimeOutcome) OK() bool {
	return o.Err == nil
}
