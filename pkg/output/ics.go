package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
)

const (
	// DefaultEventDuration is used for records without an end time.
	DefaultEventDuration = time.Hour

	icsProductID = "-//ExtractTime//extracttime//EN"

	// Floating local time: records carry no time zone.
	icsLocalLayout = "20060102T150405"

	maxSummaryRunes = 80
)

// eventNamespace seeds the name-based UIDs of calendar events.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/VictorBaumgartner/ExtractTime/events"))

// ICSFormatter renders every record as an iCalendar VEVENT.
type ICSFormatter struct {
	opts FormatOptions
}

// NewICSFormatter creates a new iCalendar formatter. Quiet has no effect.
func NewICSFormatter(opts FormatOptions) *ICSFormatter {
	return &ICSFormatter{opts: opts}
}

// Name returns the format name.
func (f *ICSFormatter) Name() string {
	return "ics"
}

// Format renders the report as an iCalendar stream.
func (f *ICSFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	cal := ical.NewCalendar()
	cal.SetProductId(icsProductID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName("ExtractTime")

	stamp := report.Metadata.StartedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}

	for _, row := range report.Rows {
		for i, rec := range row.Records {
			if err := addEvent(cal, row, i, rec, stamp, f.opts.Verbose); err != nil {
				return fmt.Errorf("row %s record %d: %w", row.ID, i, err)
			}
		}
	}

	return cal.SerializeTo(w)
}

func addEvent(cal *ical.Calendar, row RowReport, index int, rec extract.Record, stamp time.Time, verbose bool) error {
	start, err := rec.StartAt()
	if err != nil {
		return err
	}
	end, ok, err := rec.EndAt()
	if err != nil {
		return err
	}
	if !ok || !end.After(start) {
		end = start.Add(DefaultEventDuration)
	}

	event := cal.AddEvent(EventUID(row.ID, index, rec))
	event.SetDtStampTime(stamp)
	event.SetProperty(ical.ComponentPropertyDtStart, start.Format(icsLocalLayout))
	event.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icsLocalLayout))
	event.SetSummary(eventSummary(row))

	if verbose {
		desc := "row " + row.ID
		if row.Source != "" {
			desc += fmt.Sprintf(" (%s:%d)", row.Source, row.Line)
		}
		event.SetDescription(desc)
	}
	return nil
}

// EventUID returns a stable UID for the index-th record of a row, so
// re-running on the same input updates events instead of duplicating them.
func EventUID(rowID string, index int, rec extract.Record) string {
	end := ""
	if rec.EndTime != nil {
		end = *rec.EndTime
	}
	name := fmt.Sprintf("%s|%d|%s|%s|%s", rowID, index, rec.Date, rec.StartTime, end)
	return uuid.NewSHA1(eventNamespace, []byte(name)).String() + "@extracttime"
}

// eventSummary is the first non-blank line of the row text, shortened.
func eventSummary(row RowReport) string {
	for line := range strings.Lines(row.Text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxSummaryRunes {
			line = string([]rune(line)[:maxSummaryRunes-1]) + "…"
		}
		return line
	}
	return "Event " + row.ID
}
