package commands

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/VictorBaumgartner/ExtractTime/pkg/config"
	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an ExtractTime configuration file without running extraction.

Checks:
  - YAML syntax
  - Required fields
  - Column selection
  - Extra month names
  - Output format, store driver and webhook settings
  - Source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Sources:     %d pattern(s)\n", len(cfg.Sources))
	fmt.Fprintf(w, "  Text column: %s\n", describeTextColumn(cfg.Columns))
	fmt.Fprintf(w, "  Output:      %s\n", cfg.Output.Format)
	fmt.Fprintf(w, "  Workers:     %d\n", cfg.Workers)
	if cfg.Store != nil {
		fmt.Fprintf(w, "  Store:       %s (table %s)\n", cfg.Store.Driver, cfg.Store.Table)
	}
	fmt.Fprintf(w, "  Webhooks:    %d\n", len(cfg.Webhooks))

	if len(cfg.Extraction.Months) > 0 {
		names := make([]string, 0, len(cfg.Extraction.Months))
		for name := range cfg.Extraction.Months {
			names = append(names, name)
		}
		slices.Sort(names)
		fmt.Fprintf(w, "\nExtra month names:\n")
		for _, name := range names {
			fmt.Fprintf(w, "  %s = %d\n", name, cfg.Extraction.Months[name])
		}
	}

	// Missing sources are warnings only.
	files, err := source.ExpandGlobs(cfg.Sources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding source patterns: %v\n", err)
		return nil
	}
	var missing []string
	for _, f := range files {
		if !fileExists(f) {
			missing = append(missing, f)
		}
	}
	fmt.Fprintf(w, "\nSource files matched: %d\n", len(files)-len(missing))
	for _, f := range files {
		if fileExists(f) {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	for _, f := range missing {
		fmt.Fprintf(w, "\nWarning: No file matches %s\n", f)
	}

	return nil
}

func describeTextColumn(cols source.Columns) string {
	if cols.Text != "" {
		return fmt.Sprintf("%q", cols.Text)
	}
	return fmt.Sprintf("index %d", cols.TextIndex)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
