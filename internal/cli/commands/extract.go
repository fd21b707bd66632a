package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/VictorBaumgartner/ExtractTime/internal/logging"
	"github.com/VictorBaumgartner/ExtractTime/pkg/batch"
	"github.com/VictorBaumgartner/ExtractTime/pkg/config"
	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
	"github.com/VictorBaumgartner/ExtractTime/pkg/output"
	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
)

// inlineRowID names the single row built from command-line text.
const inlineRowID = "1"

// ExtractOptions holds command-line options for the extract command.
type ExtractOptions struct {
	Output             string
	Published          string
	NoRangeStartRecord bool
	MonthNames         bool
	Verbose            bool
	LogLevel           string
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract dates and times from a single text",
		Long: `Extract the dates and times mentioned in a text.

The text is taken from the arguments, joined by spaces, or read from stdin
when no argument is given.

Example:
  extracttime extract "Dimanche 20 avril 2025 de 10h30-12h30"
  extracttime extract --published 2025-01-15 "Ouverture des portes à 9h"
  echo "le 20/04/2025 à 10h" | extracttime extract -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|ics)")
	cmd.Flags().StringVarP(&opts.Published, "published", "p", "", "Publication date (YYYY-MM-DD) used when the text has no date")
	cmd.Flags().BoolVar(&opts.NoRangeStartRecord, "no-range-start-record", false, "Do not emit a start-only record next to each time range")
	cmd.Flags().BoolVar(&opts.MonthNames, "month-names", false, "Accept month names in day-month-year dates (20-avril-2025)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show run details")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *ExtractOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	formatter, err := output.New(opts.Output, output.FormatOptions{Verbose: opts.Verbose})
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(config.LoggingConfig{Level: opts.LogLevel})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ex := extract.New(
		extract.WithLogger(logger),
		extract.WithEmitStartRecordWhenRangePresent(!opts.NoRangeStartRecord),
		extract.WithMonthNamesInNumericDates(opts.MonthNames),
	)

	row := source.Row{ID: inlineRowID, Text: text, Published: opts.Published}
	result, err := batch.New(ex, batch.WithWorkers(1), batch.WithLogger(logger)).Run(ctx, source.NewStaticSource(row))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	report := output.NewReport(result, uuid.New(), "", nil)
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
