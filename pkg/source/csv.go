package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const bom = "\uFEFF"

// CSVSource reads rows from CSV files with a header line, one file after
// the other.
type CSVSource struct {
	files   []string
	columns Columns
	logger  *slog.Logger

	current   *os.File
	reader    *csv.Reader
	layout    layout
	path      string
	// seq numbers data rows across all files and is the fallback row ID.
	seq       int
	fileIndex int
}

// layout holds the resolved cell positions for the current file. -1 means
// the column is absent.
type layout struct {
	id, text, published int
}

// Option configures a CSVSource.
type Option func(*CSVSource)

// WithLogger sets the logger used for skipped-row warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *CSVSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewCSVSource creates a RowSource over files using cols to pick cells.
func NewCSVSource(files []string, cols Columns, opts ...Option) *CSVSource {
	s := &CSVSource{
		files:     files,
		columns:   cols,
		logger:    slog.New(slog.DiscardHandler),
		fileIndex: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next row. Rows too short to hold the text column are
// skipped with a warning. Returns io.EOF once every file is exhausted.
func (s *CSVSource) Next(ctx context.Context) (*Row, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.reader == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			if err := s.closeCurrentFile(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.path, err)
		}

		s.seq++
		line, _ := s.reader.FieldPos(0)

		if s.layout.text >= len(record) {
			s.logger.Warn("skipping short row", "source", s.path, "line", line, "fields", len(record))
			continue
		}

		row := &Row{
			ID:     strconv.Itoa(s.seq),
			Text:   record[s.layout.text],
			Source: s.path,
			Line:   line,
		}
		if id := cell(record, s.layout.id); id != "" {
			row.ID = id
		}
		row.Published = publishedCell(cell(record, s.layout.published))
		return row, nil
	}
}

// Close releases resources.
func (s *CSVSource) Close() error {
	return s.closeCurrentFile()
}

func (s *CSVSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening input file %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: missing header line", path)
		}
		return fmt.Errorf("reading header of %s: %w", path, err)
	}

	l, err := resolveLayout(header, s.columns)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	s.current = f
	s.reader = r
	s.layout = l
	s.path = path
	return nil
}

func (s *CSVSource) closeCurrentFile() error {
	s.reader = nil
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	return err
}

// resolveLayout maps configured column names onto header positions.
func resolveLayout(header []string, cols Columns) (layout, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	l := layout{id: -1, published: -1}

	if cols.Text != "" {
		i, ok := index[cols.Text]
		if !ok {
			return l, fmt.Errorf("%w: text column %q", ErrColumnNotFound, cols.Text)
		}
		l.text = i
	} else {
		if cols.TextIndex < 0 || cols.TextIndex >= len(header) {
			return l, fmt.Errorf("%w: text column index %d, header has %d columns", ErrColumnNotFound, cols.TextIndex, len(header))
		}
		l.text = cols.TextIndex
	}

	if cols.ID != "" {
		if i, ok := index[cols.ID]; ok {
			l.id = i
		}
	}
	if cols.Published != "" {
		if i, ok := index[cols.Published]; ok {
			l.published = i
		}
	}
	return l, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// publishedCell maps the placeholders spreadsheets and dataframes write for
// missing values to empty.
func publishedCell(v string) string {
	switch strings.ToLower(v) {
	case "nan", "nat", "null", "none":
		return ""
	}
	return v
}
