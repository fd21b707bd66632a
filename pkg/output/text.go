package output

import (
	"context"
	"fmt"
	"io"

	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
)

// TextFormatter formats reports as a human-readable table.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "ExtractTime: %d rows processed, %d with records, %d total records\n",
		report.Summary.RowsProcessed,
		report.Summary.RowsWithRecords,
		report.Summary.TotalRecords)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== ExtractTime Report ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s | %s\n", "id", "extracted_info")

	for i := range report.Rows {
		f.formatRow(&report.Rows[i], w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d rows processed, %d rows with records, %d total records\n",
		report.Summary.RowsProcessed,
		report.Summary.RowsWithRecords,
		report.Summary.TotalRecords)
	if report.Summary.FallbackRows > 0 {
		fmt.Fprintf(w, "Dated by publication date: %d rows\n", report.Summary.FallbackRows)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run: %s\n", report.Metadata.RunID)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	_, err := fmt.Fprintln(w)
	return err
}

func (f *TextFormatter) formatRow(row *RowReport, w io.Writer) {
	id := row.ID
	if f.opts.Verbose && row.Source != "" {
		id = fmt.Sprintf("%s (%s:%d)", row.ID, row.Source, row.Line)
	}

	if len(row.Records) == 0 {
		fmt.Fprintf(w, "%-12s | []\n", id)
		return
	}

	for i, rec := range row.Records {
		label := id
		if i > 0 {
			label = ""
		}
		fmt.Fprintf(w, "%-12s | %s\n", label, formatRecord(rec))
	}
}

func formatRecord(rec extract.Record) string {
	span := rec.StartTime
	if rec.EndTime != nil {
		span += "-" + *rec.EndTime
	}
	return fmt.Sprintf("%s %-17s %s / %s", rec.Date, span, rec.StartColumn, rec.EndColumn)
}
