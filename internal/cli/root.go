// Package cli provides the command-line interface for ExtractTime.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VictorBaumgartner/ExtractTime/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors keeps cobra from printing it.
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "extracttime",
		Short: "Extract event dates and times from free text",
		Long: `ExtractTime finds event dates and times in French or English text and
turns them into schedule records labelled by weekday and half-day, such as
sunday_start_hour_am.

When a text mentions a time but no date, the row's publication date
(YYYY-MM-DD) is used instead.

Run a single text with "extract", or a batch of CSV files with "run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewExtractCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
