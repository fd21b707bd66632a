package detector

import (
	"strconv"
	"time"

	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
)

// unixSeconds marks a format parsed as a Unix timestamp rather than a layout.
const unixSeconds = "UNIX_SECONDS"

// DateFormat is a cell format a publication date column may use.
type DateFormat struct {
	Name   string
	Layout string

	// Supported is true only for the format the extractor accepts as a
	// publication date. Other formats are recognized so the column can be
	// flagged for conversion.
	Supported bool

	// Ambiguous is true when the layout cannot tell DD/MM from MM/DD.
	Ambiguous bool
}

// DefaultDateFormats returns the publication date formats to test, most
// specific first.
func DefaultDateFormats() []DateFormat {
	return []DateFormat{
		{Name: "ISO date", Layout: extract.PublicationLayout, Supported: true},
		{Name: "RFC 3339", Layout: time.RFC3339},
		{Name: "ISO datetime", Layout: "2006-01-02T15:04:05"},
		{Name: "Datetime (space-separated)", Layout: time.DateTime},
		{Name: "European date (DD/MM/YYYY)", Layout: "02/01/2006", Ambiguous: true},
		{Name: "Unix timestamp (seconds)", Layout: unixSeconds},
	}
}

// parse reports whether v is a date in format f.
func (f DateFormat) parse(v string) (time.Time, bool) {
	if f.Layout == unixSeconds {
		secs, err := strconv.ParseInt(v, 10, 64)
		// 2001-09-09 to 2100-01-01 keeps small integers from reading as dates.
		if err != nil || secs < 1_000_000_000 || secs > 4102444800 {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true
	}
	t, err := time.Parse(f.Layout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
