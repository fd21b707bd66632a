package extract

import (
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/VictorBaumgartner/ExtractTime/pkg/catalog"
)

// Extractor runs the extraction pipeline. It holds no mutable state and is
// safe for concurrent use.
type Extractor struct {
	catalog         *catalog.Catalog
	logger          *slog.Logger
	emitStartRecord bool
	normalize       NormalizeOptions
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCatalog replaces the built-in pattern catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Extractor) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithLogger sets the logger that receives diagnostics. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEmitStartRecordWhenRangePresent controls whether a time range also
// yields a start-only record (default true).
func WithEmitStartRecordWhenRangePresent(v bool) Option {
	return func(e *Extractor) {
		e.emitStartRecord = v
	}
}

// WithMonthNamesInNumericDates lets 3-field dates such as "20-avril-2025"
// resolve their month through the month table (default false).
func WithMonthNamesInNumericDates(v bool) Option {
	return func(e *Extractor) {
		e.normalize.ResolveMonthNames = v
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		catalog:         catalog.Default(),
		logger:          slog.New(slog.DiscardHandler),
		emitStartRecord: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the pattern catalog in use.
func (e *Extractor) Catalog() *catalog.Catalog {
	return e.catalog
}

// Explanation records every stage of one extraction.
type Explanation struct {
	// DateCandidates are the candidates after the fallback step.
	DateCandidates []DateCandidate
	TimeCandidates []TimeCandidate

	// UsedFallback is set when the publication date stood in for text dates.
	UsedFallback bool

	// FallbackErr is set when the publication date could not be parsed.
	FallbackErr error

	Dates   []DateOutcome
	Times   []TimeOutcome
	Records []Record
}

// Extract returns the records found in text, falling back to published
// (YYYY-MM-DD, may be empty) when the text holds no date. It never fails;
// rejected fragments are only logged.
func (e *Extractor) Extract(text, published string) []Record {
	return e.Explain(text, published).Records
}

// Explain runs the pipeline and keeps every intermediate result.
func (e *Extractor) Explain(text, published string) Explanation {
	var x Explanation

	normalized := norm.NFKC.String(text)
	scanned := scanDates(e.catalog, normalized)
	x.TimeCandidates = scanTimes(e.catalog, normalized)

	dates, err := ResolveFallback(scanned, published)
	if err != nil {
		x.FallbackErr = err
		e.logger.Warn("failed to parse publication date", "published", published, "err", err)
	}
	x.UsedFallback = len(scanned) == 0 && len(dates) > 0
	x.DateCandidates = dates

	var validDates []CalendarDate
	for _, c := range dates {
		o := NormalizeDate(e.catalog, c, e.normalize)
		x.Dates = append(x.Dates, o)
		if !o.OK() {
			e.logger.Debug("dropping date candidate", "pattern", c.Pattern, "fields", c.Fields, "err", o.Err)
			continue
		}
		validDates = append(validDates, o.Date)
	}

	var validTimes []ClockTime
	for _, c := range x.TimeCandidates {
		o := NormalizeTime(c)
		x.Times = append(x.Times, o)
		if !o.OK() {
			e.logger.Debug("dropping time candidate", "pattern", c.Pattern, "fields", c.Fields, "err", o.Err)
			continue
		}
		validTimes = append(validTimes, o.Time)
	}

	x.Records = BuildRecords(validDates, validTimes, BuildOptions{
		EmitStartRecordWhenRangePresent: e.emitStartRecord,
	})
	return x
}
