package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/VictorBaumgartner/ExtractTime/internal/logging"
	"github.com/VictorBaumgartner/ExtractTime/pkg/batch"
	"github.com/VictorBaumgartner/ExtractTime/pkg/config"
	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
	"github.com/VictorBaumgartner/ExtractTime/pkg/output"
	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
	"github.com/VictorBaumgartner/ExtractTime/pkg/store"
	"github.com/VictorBaumgartner/ExtractTime/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// RunOptions holds command-line options for the run command.
type RunOptions struct {
	Output    string
	Workers   int
	Verbose   bool
	Quiet     bool
	FailEmpty bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <config-file>",
		Short: "Extract schedules from the CSV sources in a config file",
		Long: `Read every row of the CSV files named in the configuration file, extract
the dates and times in each row's text and print a report.

Records are also saved to the configured store and the report is posted to
the configured webhooks.

Exit codes:
  0 - Run completed
  1 - No records extracted (with --fail-empty)
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json|ics), overrides the config")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", 0, "Rows extracted at once, overrides the config")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show row sources and run details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.FailEmpty, "fail-empty", false, "Exit with code 1 when no record is extracted")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnRecords), "When to fire webhook (on_records|always|never)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.Output != "" {
		cfg.Output.Format = opts.Output
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}

	formatter, err := output.New(cfg.Output.Format, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = closeLog() }()

	files, err := source.ExpandGlobs(cfg.Sources)
	if err != nil {
		return fmt.Errorf("expanding sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files matched patterns: %v", cfg.Sources)
	}

	cat, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("building pattern catalog: %w", err)
	}
	ex := extract.New(
		extract.WithCatalog(cat),
		extract.WithLogger(logger),
		extract.WithEmitStartRecordWhenRangePresent(cfg.Extraction.EmitStartRecordWhenRangePresent),
		extract.WithMonthNamesInNumericDates(cfg.Extraction.ResolveMonthNames),
	)

	src := source.NewCSVSource(files, cfg.Columns, source.WithLogger(logger))
	defer func() { _ = src.Close() }()

	runner := batch.New(ex, batch.WithWorkers(cfg.Workers), batch.WithLogger(logger))
	result, err := runner.Run(ctx, src)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	report := output.NewReport(result, uuid.New(), configPath, files)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if cfg.Store != nil {
		saved, err := saveRecords(ctx, cfg.Store, report.Metadata.RunID, result.Rows)
		if err != nil {
			return fmt.Errorf("saving records: %w", err)
		}
		logger.Info("records saved", "driver", cfg.Store.Driver, "table", cfg.Store.Table, "records", saved, "run_id", report.Metadata.RunID)
	}

	// Webhook failures are reported but do not fail the run.
	sendWebhooks(ctx, cmd, cfg, opts, report)

	if opts.FailEmpty && !report.HasRecords() {
		ExitCode = 1
	}

	return nil
}

func saveRecords(ctx context.Context, sc *config.StoreConfig, runID string, rows []batch.RowResult) (int, error) {
	s, err := store.Open(ctx, sc.Driver, sc.DSN, sc.Table)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()

	if err := s.Migrate(ctx); err != nil {
		return 0, err
	}
	return s.Save(ctx, runID, rows)
}

// sendWebhooks sends the report to all configured webhooks.
func sendWebhooks(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *RunOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()
	stderr := cmd.ErrOrStderr()

	for _, wh := range webhooks {
		if !wh.Trigger.ShouldFire(report.HasRecords()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			_, _ = fmt.Fprintf(stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			_, _ = fmt.Fprintf(stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the one given on the
// command line.
func collectWebhooks(cfg *config.Config, opts *RunOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnRecords
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
