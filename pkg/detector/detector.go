// Package detector inspects a CSV input and suggests which columns hold the
// event text and the publication date.
package detector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/VictorBaumgartner/ExtractTime/pkg/catalog"
	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
)

// minPublishedShare is the share of non-empty cells that must parse as a
// date before a column is suggested as the publication date.
const minPublishedShare = 0.5

// ColumnScore describes one column of the sample.
type ColumnScore struct {
	Index int
	Name  string

	// NonEmpty counts the sampled cells with content.
	NonEmpty int

	// TextShare is the share of non-empty cells yielding at least one date
	// or time candidate.
	TextShare float64

	// PublishedShare is the share of non-empty cells in the supported
	// publication date format.
	PublishedShare float64

	// DateFormat is the best matching publication date format, if any, and
	// DateShare its share of non-empty cells.
	DateFormat *DateFormat
	DateShare  float64

	AvgLength float64
	Sample    string
}

// DetectionResult holds the result of analyzing a CSV sample.
type DetectionResult struct {
	Header      []string
	SampledRows int

	// Columns are in header order.
	Columns []ColumnScore

	// Suggested is the column selection to put in a config file.
	Suggested source.Columns

	// TextColumn and PublishedColumn index Columns; -1 when nothing fits.
	TextColumn      int
	PublishedColumn int

	// Notes are warnings about the sample, such as a date column in a
	// format the extractor does not accept.
	Notes []string
}

// Detector scores CSV columns.
type Detector struct {
	catalog    *catalog.Catalog
	formats    []DateFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of data rows to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithCatalog sets the pattern catalog used to score text columns.
func WithCatalog(c *catalog.Catalog) Option {
	return func(d *Detector) {
		if c != nil {
			d.catalog = c
		}
	}
}

// New creates a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		catalog:    catalog.Default(),
		formats:    DefaultDateFormats(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a CSV file and scores its columns.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	header, rows, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromRecords(header, rows), nil
}

// DetectFromRecords scores the columns of an already parsed sample.
func (d *Detector) DetectFromRecords(header []string, rows [][]string) *DetectionResult {
	result := &DetectionResult{
		Header:          header,
		SampledRows:     len(rows),
		TextColumn:      -1,
		PublishedColumn: -1,
		Suggested:       source.Columns{},
	}
	if len(header) == 0 {
		return result
	}

	for i, name := range header {
		result.Columns = append(result.Columns, d.scoreColumn(i, name, rows))
	}

	result.TextColumn = bestTextColumn(result.Columns)
	result.PublishedColumn = bestPublishedColumn(result.Columns)

	if result.TextColumn >= 0 {
		c := result.Columns[result.TextColumn]
		result.Suggested.Text = c.Name
		result.Suggested.TextIndex = c.Index
	}
	if result.PublishedColumn >= 0 {
		result.Suggested.Published = result.Columns[result.PublishedColumn].Name
	}
	for _, c := range result.Columns {
		if strings.EqualFold(c.Name, "id") {
			result.Suggested.ID = c.Name
			break
		}
	}

	for _, c := range result.Columns {
		if c.DateFormat == nil || c.DateFormat.Supported || c.DateShare < minPublishedShare {
			continue
		}
		note := fmt.Sprintf("column %q looks like %s; publication dates must be YYYY-MM-DD", c.Name, c.DateFormat.Name)
		if c.DateFormat.Ambiguous {
			note += " (day and month order is ambiguous)"
		}
		result.Notes = append(result.Notes, note)
	}
	if result.TextColumn < 0 && len(rows) > 0 {
		result.Notes = append(result.Notes, "no column contains a recognizable date or time")
	}

	return result
}

func (d *Detector) scoreColumn(index int, name string, rows [][]string) ColumnScore {
	score := ColumnScore{Index: index, Name: name}

	var textHits, totalLen int
	formatHits := make([]int, len(d.formats))
	for _, row := range rows {
		if index >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[index])
		if v == "" {
			continue
		}
		score.NonEmpty++
		totalLen += utf8.RuneCountInString(v)
		if score.Sample == "" {
			score.Sample = v
		}

		if len(extract.ScanDates(d.catalog, v)) > 0 || len(extract.ScanTimes(d.catalog, v)) > 0 {
			textHits++
		}
		for fi, f := range d.formats {
			if _, ok := f.parse(v); ok {
				formatHits[fi]++
				break
			}
		}
	}

	if score.NonEmpty == 0 {
		return score
	}
	n := float64(score.NonEmpty)
	score.TextShare = float64(textHits) / n
	score.AvgLength = float64(totalLen) / n

	best := -1
	for fi, hits := range formatHits {
		if d.formats[fi].Supported {
			score.PublishedShare = float64(hits) / n
		}
		if hits > 0 && (best < 0 || hits > formatHits[best]) {
			best = fi
		}
	}
	if best >= 0 {
		f := d.formats[best]
		score.DateFormat = &f
		score.DateShare = float64(formatHits[best]) / n
	}
	return score
}

// bestTextColumn prefers the highest candidate share, then the longest
// cells. Columns that are themselves dates do not count as text.
func bestTextColumn(cols []ColumnScore) int {
	best := -1
	for i, c := range cols {
		if c.TextShare == 0 || c.DateShare >= minPublishedShare {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := cols[best]
		if c.TextShare > b.TextShare || (c.TextShare == b.TextShare && c.AvgLength > b.AvgLength) {
			best = i
		}
	}
	return best
}

func bestPublishedColumn(cols []ColumnScore) int {
	best := -1
	for i, c := range cols {
		if c.PublishedShare < minPublishedShare {
			continue
		}
		if best < 0 || c.PublishedShare > cols[best].PublishedShare {
			best = i
		}
	}
	return best
}

// sampleFile reads the header and up to sampleSize data rows.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, [][]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: missing header line", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for len(rows) < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

// HasText reports whether a text column was found.
func (r *DetectionResult) HasText() bool {
	return r.TextColumn >= 0
}

// Ranked returns the columns ordered by text share, best first.
func (r *DetectionResult) Ranked() []ColumnScore {
	ranked := slices.Clone(r.Columns)
	slices.SortStableFunc(ranked, func(a, b ColumnScore) int {
		switch {
		case a.TextShare > b.TextShare:
			return -1
		case a.TextShare < b.TextShare:
			return 1
		}
		return 0
	})
	return ranked
}

// ConfigSnippet renders the suggested columns as a YAML config fragment.
func (r *DetectionResult) ConfigSnippet() (string, error) {
	out, err := yaml.Marshal(struct {
		Columns source.Columns `yaml:"columns"`
	}{r.Suggested})
	if err != nil {
		return "", fmt.Errorf("encoding config snippet: %w", err)
	}
	return string(out), nil
}
