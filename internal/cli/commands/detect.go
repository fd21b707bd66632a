package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/VictorBaumgartner/ExtractTime/pkg/config"
	"github.com/VictorBaumgartner/ExtractTime/pkg/detector"
	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <csv-file>",
		Short: "Detect the text and publication date columns of a CSV file",
		Long: `Sample a CSV file and suggest which column holds the event text and which
holds the publication date.

A column is a text candidate when its cells contain dates or times the
extractor recognizes. A column is a publication date candidate when most of
its cells are YYYY-MM-DD dates. Columns holding dates in another format are
reported so they can be converted first.

Optionally generates a starter config file with --write-config.

Example:
  extracttime detect events.csv
  extracttime detect --sample 500 --all events.csv
  extracttime detect -w extracttime.yaml events.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of rows to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every column, not just the suggested ones")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	csvFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(csvFile); os.IsNotExist(err) {
		return fmt.Errorf("csv file not found: %s", csvFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, csvFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, csvFile, opts.WriteConfig); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Wrote starter config to: %s\n\n", opts.WriteConfig)
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, csvFile, opts)
	default:
		return outputDetectText(w, result, csvFile, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, csvFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Column Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", csvFile)
	fmt.Fprintf(w, "Columns: %d\n", len(result.Header))
	fmt.Fprintf(w, "Rows sampled: %d\n", result.SampledRows)
	fmt.Fprintln(w)

	if !result.HasText() {
		fmt.Fprintln(w, "No text column detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: no sampled cell mentions a date or time the extractor recognizes.")
		fmt.Fprintln(w, "Try a larger --sample, or run 'extracttime diagnose' on a cell.")
		printNotes(w, result.Notes)
		return nil
	}

	text := result.Columns[result.TextColumn]
	fmt.Fprintf(w, "Text column: %s (index %d)\n", text.Name, text.Index)
	fmt.Fprintf(w, "  %.1f%% of cells mention a date or time\n", text.TextShare*100)
	fmt.Fprintf(w, "  Sample: %s\n", truncate(text.Sample, 80))
	fmt.Fprintln(w)

	if result.PublishedColumn >= 0 {
		pub := result.Columns[result.PublishedColumn]
		fmt.Fprintf(w, "Publication date column: %s (index %d)\n", pub.Name, pub.Index)
		fmt.Fprintf(w, "  %.1f%% of cells are YYYY-MM-DD dates\n", pub.PublishedShare*100)
	} else {
		fmt.Fprintln(w, "Publication date column: none")
	}
	fmt.Fprintln(w)

	printNotes(w, result.Notes)

	snippet, err := result.ConfigSnippet()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprint(w, snippet)
	fmt.Fprintln(w)

	if opts.ShowAll {
		fmt.Fprintln(w, "--- All columns ---")
		for i, c := range result.Ranked() {
			fmt.Fprintf(w, "%d. %s (index %d): text %.1f%%, dates %.1f%%", i+1, c.Name, c.Index, c.TextShare*100, c.DateShare*100)
			if c.DateFormat != nil {
				fmt.Fprintf(w, " [%s]", c.DateFormat.Name)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	return nil
}

func printNotes(w io.Writer, notes []string) {
	for _, n := range notes {
		fmt.Fprintf(w, "Note: %s\n", n)
	}
	if len(notes) > 0 {
		fmt.Fprintln(w)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// JSONColumn represents a scored column in JSON output.
type JSONColumn struct {
	Index          int     `json:"index"`
	Name           string  `json:"name"`
	NonEmpty       int     `json:"non_empty"`
	TextShare      float64 `json:"text_share"`
	PublishedShare float64 `json:"published_share"`
	DateFormat     string  `json:"date_format,omitempty"`
	DateShare      float64 `json:"date_share,omitempty"`
	Sample         string  `json:"sample,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File            string         `json:"file"`
	SampledRows     int            `json:"sampled_rows"`
	TextColumn      string         `json:"text_column,omitempty"`
	PublishedColumn string         `json:"publication_date_column,omitempty"`
	Suggested       source.Columns `json:"suggested"`
	Columns         []JSONColumn   `json:"columns"`
	Notes           []string       `json:"notes,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, csvFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:        csvFile,
		SampledRows: result.SampledRows,
		Suggested:   result.Suggested,
		Notes:       result.Notes,
		Columns:     make([]JSONColumn, 0),
	}
	if result.TextColumn >= 0 {
		out.TextColumn = result.Columns[result.TextColumn].Name
	}
	if result.PublishedColumn >= 0 {
		out.PublishedColumn = result.Columns[result.PublishedColumn].Name
	}

	for i, c := range result.Columns {
		if !opts.ShowAll && i != result.TextColumn && i != result.PublishedColumn {
			continue
		}
		jc := JSONColumn{
			Index:          c.Index,
			Name:           c.Name,
			NonEmpty:       c.NonEmpty,
			TextShare:      c.TextShare,
			PublishedShare: c.PublishedShare,
			DateShare:      c.DateShare,
			Sample:         c.Sample,
		}
		if c.DateFormat != nil {
			jc.DateFormat = c.DateFormat.Name
		}
		out.Columns = append(out.Columns, jc)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig generates a starter config file from the detected columns.
func writeStarterConfig(result *detector.DetectionResult, csvFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasText() {
		return fmt.Errorf("cannot generate config: no text column detected")
	}

	content, err := generateStarterConfig(result, csvFile)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateStarterConfig renders a config with the detected columns over
// the defaults.
func generateStarterConfig(result *detector.DetectionResult, csvFile string) (string, error) {
	absFile := csvFile
	if abs, err := filepath.Abs(csvFile); err == nil {
		absFile = abs
	}

	cfg := config.DefaultConfig()
	cfg.Sources = []string{absFile}
	cfg.Columns = result.Suggested

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding starter config: %w", err)
	}

	text := result.Columns[result.TextColumn]
	header := fmt.Sprintf(`# ExtractTime Configuration
# Generated by: extracttime detect
# Text column: %s (%.0f%% of sampled cells mention a date or time)
#
# Optional sections:
# store:
#   driver: sqlite            # or postgres
#   dsn: schedule.db
# webhooks:
#   - url: https://example.com/hook
#     trigger: on_records

`, text.Name, text.TextShare*100)

	return header + string(body), nil
}
