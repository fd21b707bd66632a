// Package batch runs extraction over every row of a source.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
)

// Explainer is the part of extract.Extractor the runner needs.
type Explainer interface {
	Explain(text, published string) extract.Explanation
}

// RowResult pairs an input row with what was extracted from it.
type RowResult struct {
	Row          source.Row
	Records      []extract.Record
	UsedFallback bool
}

// Result is the outcome of a run.
type Result struct {
	Rows []RowResult

	RowsWithRecords int
	TotalRecords    int
	FallbackRows    int

	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Runner extracts records from rows concurrently.
type Runner struct {
	extractor Explainer
	workers   int
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many rows are processed at once. Values below 1 use
// the number of CPUs.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Runner around ex.
func New(ex Explainer, opts ...Option) *Runner {
	r := &Runner{
		extractor: ex,
		workers:   runtime.NumCPU(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads every row from src and extracts from each. Results keep the
// source order. Run does not close src.
func (r *Runner) Run(ctx context.Context, src source.RowSource) (*Result, error) {
	result := &Result{StartTime: time.Now()}

	rows, err := source.ReadAll(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	r.logger.Debug("rows loaded", "rows", len(rows), "workers", r.workers)

	result.Rows = make([]RowResult, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x := r.extractor.Explain(rows[i].Text, rows[i].Published)
			result.Rows[i] = RowResult{
				Row:          rows[i],
				Records:      x.Records,
				UsedFallback: x.UsedFallback,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rr := range result.Rows {
		if len(rr.Records) > 0 {
			result.RowsWithRecords++
		}
		if rr.UsedFallback {
			result.FallbackRows++
		}
		result.TotalRecords += len(rr.Records)
	}
	result.EndTime = time.Now()

	r.logger.Info("extraction finished",
		"rows", len(result.Rows),
		"rows_with_records", result.RowsWithRecords,
		"records", result.TotalRecords,
		"duration", result.Duration())
	return result, nil
}
