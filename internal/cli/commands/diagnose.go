package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VictorBaumgartner/ExtractTime/pkg/catalog"
	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Output    string
	Published string
	Verbose   bool
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [text...]",
		Short: "Show why a text yields the records it does",
		Long: `Run extraction on a text and show every intermediate step:

- the candidates each date and time pattern captured
- whether the publication date stood in for a missing date
- which candidates resolved and why the others were dropped
- the records built from what remained

The text is taken from the arguments or read from stdin.

Example:
  extracttime diagnose "Le 31/04/2025 à 10h30"
  extracttime diagnose -v --published 2025-01-15 "Ouverture à 9h"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Published, "published", "p", "", "Publication date (YYYY-MM-DD) used when the text has no date")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Also list the pattern catalog")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string, opts *DiagnoseOptions) error {
	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	ex := extract.New()
	x := ex.Explain(text, opts.Published)
	w := cmd.OutOrStdout()

	switch opts.Output {
	case "json":
		return printDiagnosisJSON(w, text, opts.Published, x)
	case "text", "":
		printDiagnosis(w, ex.Catalog(), text, opts, x)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func printDiagnosis(w io.Writer, cat *catalog.Catalog, text string, opts *DiagnoseOptions, x extract.Explanation) {
	fmt.Fprintln(w, "=== Extraction Diagnosis ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Text: %s\n", text)
	published := opts.Published
	if published == "" {
		published = "(none)"
	}
	fmt.Fprintf(w, "Publication date: %s\n", published)
	fmt.Fprintln(w)

	if opts.Verbose {
		printCatalog(w, cat)
	}

	fmt.Fprintf(w, "Date candidates (%d):\n", len(x.Dates))
	for _, o := range x.Dates {
		status := "[OK]"
		detail := o.Date.String()
		if !o.OK() {
			status = "[DROP]"
			detail = o.Err.Error()
		}
		fmt.Fprintf(w, "  %-6s %-28s %-22s -> %s\n", status, o.Candidate.Pattern, fieldList(o.Candidate.Fields), detail)
	}
	switch {
	case x.UsedFallback:
		fmt.Fprintln(w, "  No date in the text, the publication date was used.")
	case x.FallbackErr != nil:
		fmt.Fprintf(w, "  Publication date ignored: %v\n", x.FallbackErr)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Time candidates (%d):\n", len(x.Times))
	for _, o := range x.Times {
		status := "[OK]"
		detail := clockString(o.Time)
		if !o.OK() {
			status = "[DROP]"
			detail = o.Err.Error()
		}
		fmt.Fprintf(w, "  %-6s %-28s %-22s -> %s\n", status, o.Candidate.Pattern, fieldList(o.Candidate.Fields), detail)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Records (%d):\n", len(x.Records))
	for _, r := range x.Records {
		times := r.StartTime
		if r.EndTime != nil {
			times += "-" + *r.EndTime
		}
		fmt.Fprintf(w, "  %s %-17s %s / %s\n", r.Date, times, r.StartColumn, r.EndColumn)
	}
	if len(x.Records) == 0 {
		fmt.Fprintln(w, "  (none)")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: a record needs at least one resolved date and one resolved time.")
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintln(w, "Date patterns:")
	for i, p := range cat.Dates() {
		fmt.Fprintf(w, "  %d. %s (%d fields)\n", i+1, p.Name, p.Fields)
		fmt.Fprintf(w, "     %s\n", p.Expr)
	}
	fmt.Fprintln(w, "Time patterns:")
	for i, p := range cat.Times() {
		fmt.Fprintf(w, "  %d. %s (%d fields)\n", i+1, p.Name, p.Fields)
		fmt.Fprintf(w, "     %s\n", p.Expr)
	}
	fmt.Fprintln(w)
}

func fieldList(fields []string) string {
	return "(" + strings.Join(fields, ", ") + ")"
}

func clockString(ct extract.ClockTime) string {
	s := fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
	if ct.HasEnd {
		s += fmt.Sprintf("-%02d:%02d", ct.EndHour, ct.EndMinute)
	}
	return s
}

// DiagnosisCandidate is one candidate in JSON output.
type DiagnosisCandidate struct {
	Pattern string   `json:"pattern"`
	Fields  []string `json:"fields"`
	Value   string   `json:"value,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// DiagnosisOutput is the full JSON output of the diagnose command.
type DiagnosisOutput struct {
	Text          string               `json:"text"`
	Published     string               `json:"publication_date,omitempty"`
	UsedFallback  bool                 `json:"used_fallback"`
	FallbackError string               `json:"fallback_error,omitempty"`
	Dates         []DiagnosisCandidate `json:"dates"`
	Times         []DiagnosisCandidate `json:"times"`
	Records       []extract.Record     `json:"records"`
}

func printDiagnosisJSON(w io.Writer, text, published string, x extract.Explanation) error {
	out := DiagnosisOutput{
		Text:         text,
		Published:    published,
		UsedFallback: x.UsedFallback,
		Dates:        make([]DiagnosisCandidate, 0, len(x.Dates)),
		Times:        make([]DiagnosisCandidate, 0, len(x.Times)),
		Records:      x.Records,
	}
	if x.FallbackErr != nil {
		out.FallbackError = x.FallbackErr.Error()
	}
	if out.Records == nil {
		out.Records = []extract.Record{}
	}

	for _, o := range x.Dates {
		c := DiagnosisCandidate{Pattern: o.Candidate.Pattern, Fields: o.Candidate.Fields}
		if o.OK() {
			c.Value = o.Date.String()
		} else {
			c.Error = o.Err.Error()
		}
		out.Dates = append(out.Dates, c)
	}
	for _, o := range x.Times {
		c := DiagnosisCandidate{Pattern: o.Candidate.Pattern, Fields: o.Candidate.Fields}
		if o.OK() {
			c.Value = clockString(o.Time)
		} else {
			c.Error = o.Err.Error()
		}
		out.Times = append(out.Times, c)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
