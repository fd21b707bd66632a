// Package source reads the rows that extraction runs over.
package source

import (
	"context"
	"errors"
	"io"
)

// ErrColumnNotFound is returned when a configured column is missing from a
// file's header.
var ErrColumnNotFound = errors.New("column not found")

// Row is one input record.
type Row struct {
	// ID identifies the row in reports. Falls back to the 1-based data row
	// number when the input has no ID column.
	ID string

	// Text is the free-form text to extract from.
	Text string

	// Published is the row's publication date (YYYY-MM-DD) or empty.
	Published string

	// Source is the file path this row came from.
	Source string

	// Line is the 1-based line in the source file where the row starts.
	Line int
}

// Columns selects which cells of a row feed extraction.
type Columns struct {
	// ID is the header name of the identifier column. Optional.
	ID string `yaml:"id" json:"id,omitempty"`

	// Text is the header name of the text column. When empty, TextIndex is used.
	Text string `yaml:"text" json:"text,omitempty"`

	// TextIndex is the 0-based position of the text column.
	TextIndex int `yaml:"text_index" json:"text_index"`

	// Published is the header name of the publication date column. Optional.
	Published string `yaml:"publication_date" json:"publication_date,omitempty"`
}

// RowSource provides an iterator over input rows.
// Implementations are meant for sequential access.
type RowSource interface {
	// Next returns the next row, or io.EOF when no rows remain.
	Next(ctx context.Context) (*Row, error)

	// Close releases any resources held by the source.
	Close() error
}

// ReadAll drains src. It does not close it.
func ReadAll(ctx context.Context, src RowSource) ([]Row, error) {
	var rows []Row
	for {
		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, *row)
	}
}

// StaticSource serves rows from memory.
type StaticSource struct {
	rows []Row
	pos  int
}

// NewStaticSource returns a RowSource over rows.
func NewStaticSource(rows ...Row) *StaticSource {
	return &StaticSource{rows: rows}
}

// Next implements RowSource.
func (s *StaticSource) Next(ctx context.Context) (*Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return &row, nil
}

// Close implements RowSource.
func (s *StaticSource) Close() error { return nil }
