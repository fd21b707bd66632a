// Package output renders extraction reports.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/VictorBaumgartner/ExtractTime/pkg/batch"
	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
)

// Report is the complete output of a run.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Rows holds one entry per input row, in input order.
	Rows []RowReport `json:"rows"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	RowsProcessed   int `json:"rows_processed"`
	RowsWithRecords int `json:"rows_with_records"`
	TotalRecords    int `json:"total_records"`

	// FallbackRows counts rows dated by their publication date.
	FallbackRows int `json:"fallback_rows"`
}

// RowReport is the extraction result for one row.
type RowReport struct {
	ID        string `json:"id"`
	Source    string `json:"source,omitempty"`
	Line      int    `json:"line,omitempty"`
	Published string `json:"publication_date,omitempty"`

	// Text is kept for formatters that need it, like the event summary in
	// calendar output, but not serialized.
	Text string `json:"-"`

	UsedFallback bool             `json:"used_fallback,omitempty"`
	Records      []extract.Record `json:"extracted_info"`
}

// Metadata provides context about the run.
type Metadata struct {
	// RunID identifies the run in stored records and webhooks.
	RunID string `json:"run_id"`

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the input files.
	Sources []string `json:"sources,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// NewReport creates a Report from a batch result.
func NewReport(result *batch.Result, runID uuid.UUID, configFile string, sources []string) *Report {
	report := &Report{
		Rows: make([]RowReport, 0, len(result.Rows)),
		Metadata: Metadata{
			RunID:      runID.String(),
			ConfigFile: configFile,
			Sources:    sources,
			StartedAt:  result.StartTime,
			Duration:   result.Duration(),
		},
		Summary: Summary{
			RowsProcessed:   len(result.Rows),
			RowsWithRecords: result.RowsWithRecords,
			TotalRecords:    result.TotalRecords,
			FallbackRows:    result.FallbackRows,
		},
	}

	for _, rr := range result.Rows {
		records := rr.Records
		if records == nil {
			records = []extract.Record{}
		}
		report.Rows = append(report.Rows, RowReport{
			ID:           rr.Row.ID,
			Source:       rr.Row.Source,
			Line:         rr.Row.Line,
			Published:    rr.Row.Published,
			Text:         rr.Row.Text,
			UsedFallback: rr.UsedFallback,
			Records:      records,
		})
	}

	return report
}

// HasRecords returns true if any row produced a record.
func (r *Report) HasRecords() bool {
	return r.Summary.TotalRecords > 0
}
