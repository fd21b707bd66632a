package output

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"ExtractTime Report",
		"extracted_info",
		"2025-04-20 20:00:00",
		"10:30:00-12:30:00",
		"wednesday_start_hour_pm / wednesday_end_hour_pm",
		"a3           | []",
		"3 rows processed, 2 rows with records, 3 total records",
		"Dated by publication date: 1 rows",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "events.csv") {
		t.Error("sources are only shown in verbose mode")
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "a1 (events.csv:2)") {
		t.Errorf("output missing row source:\n%s", out)
	}
	if !strings.Contains(out, "Run: "+testRunID.String()) {
		t.Error("output missing run id")
	}
	if !strings.Contains(out, "Duration: 1.5s") {
		t.Error("output missing duration")
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "ExtractTime: 3 rows processed, 2 with records, 3 total records\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatter_Format_Empty(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), &Report{}, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "0 rows processed") {
		t.Error("Output missing summary")
	}
}
