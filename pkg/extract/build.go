package extract

import (
	"strings"
	"time"
)

// BuildOptions controls record construction.
type BuildOptions struct {
	// EmitStartRecordWhenRangePresent keeps the start-only record for a time
	// range in addition to the range record. Defaults to true in Extractor.
	EmitStartRecordWhenRangePresent bool
}

// BuildRecords crosses every date with every time, in date then time order.
//
// A range time first yields a record with both start and end time, labelled
// from the end timestamp. Every time then yields a start-only record labelled
// from the start timestamp, unless it is a range and the option is off.
func BuildRecords(dates []CalendarDate, times []ClockTime, opts BuildOptions) []Record {
	var out []Record
	for _, d := range dates {
		date := d.String()
		for _, ct := range times {
			start := d.At(ct.Hour, ct.Minute)
			startTime := start.Format(TimeLayout)

			if ct.HasEnd {
				end := d.At(ct.EndHour, ct.EndMinute)
				endTime := end.Format(TimeLayout)
				startCol, endCol := ColumnLabels(end)
				out = append(out, Record{
					Date:        date,
					StartTime:   startTime,
					EndTime:     &endTime,
					StartColumn: startCol,
					EndColumn:   endCol,
				})
				if !opts.EmitStartRecordWhenRangePresent {
					continue
				}
			}

			startCol, endCol := ColumnLabels(start)
			out = append(out, Record{
				Date:        date,
				StartTime:   startTime,
				StartColumn: startCol,
				EndColumn:   endCol,
			})
		}
	}
	return out
}

// ColumnLabels returns the schedule column names for t, such as
// "sunday_start_hour_am" and "sunday_end_hour_am".
func ColumnLabels(t time.Time) (start, end string) {
	day := strings.ToLower(t.Weekday().String())
	meridiem := "am"
	if t.Hour() >= 12 {
		meridiem = "pm"
	}
	return day + "_start_hour_" + meridiem, day + "_end_hour_" + meridiem
}
