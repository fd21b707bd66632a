package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/VictorBaumgartner/ExtractTime/internal/cli"
	"github.com/VictorBaumgartner/ExtractTime/internal/cli/commands"
	"github.com/VictorBaumgartner/ExtractTime/pkg/batch"
	"github.com/VictorBaumgartner/ExtractTime/pkg/config"
	"github.com/VictorBaumgartner/ExtractTime/pkg/extract"
	"github.com/VictorBaumgartner/ExtractTime/pkg/output"
	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
	"github.com/VictorBaumgartner/ExtractTime/pkg/store"
)

// Expected totals for testdata/events.csv.
const (
	wantRows            = 8
	wantRowsWithRecords = 6
	wantRecords         = 12
	wantFallbackRows    = 1
)

var (
	testdataDir  string
	testdataOnce sync.Once
)

// eventsFile returns the absolute path of the shared CSV fixture.
func eventsFile(t *testing.T) string {
	t.Helper()
	testdataOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		testdataDir = filepath.Join(filepath.Dir(filename), "testdata")
	})
	path := filepath.Join(testdataDir, "events.csv")
	// We never skip tests - missing test data is a test failure.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Required test file not found: %s", path)
	}
	return path
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extracttime.yaml")
	content := "sources:\n  - " + eventsFile(t) + "\ncolumns:\n  text: description\nlogging:\n  level: error\n" + body
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// runCLI executes the root command and returns stdout, stderr and the
// process exit code Execute would return.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	commands.ExitCode = 0
	t.Cleanup(func() { commands.ExitCode = 0 })

	root := cli.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(context.Background()); err != nil {
		stderr.WriteString("Error: " + err.Error() + "\n")
		return stdout.String(), stderr.String(), 2
	}
	return stdout.String(), stderr.String(), commands.ExitCode
}

// TestE2E_Pipeline drives the packages the way the run command does.
func TestE2E_Pipeline(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Load(ctx, writeConfig(t, "workers: 3\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	files, err := source.ExpandGlobs(cfg.Sources)
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}

	cat, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	ex := extract.New(extract.WithCatalog(cat))
	src := source.NewCSVSource(files, cfg.Columns)
	defer src.Close()

	result, err := batch.New(ex, batch.WithWorkers(cfg.Workers)).Run(ctx, src)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Rows) != wantRows {
		t.Errorf("rows = %d, want %d", len(result.Rows), wantRows)
	}
	if result.RowsWithRecords != wantRowsWithRecords {
		t.Errorf("rows with records = %d, want %d", result.RowsWithRecords, wantRowsWithRecords)
	}
	if result.TotalRecords != wantRecords {
		t.Errorf("records = %d, want %d", result.TotalRecords, wantRecords)
	}
	if result.FallbackRows != wantFallbackRows {
		t.Errorf("fallback rows = %d, want %d", result.FallbackRows, wantFallbackRows)
	}

	byID := make(map[string]batch.RowResult)
	for _, rr := range result.Rows {
		byID[rr.Row.ID] = rr
	}

	e3 := byID["e3"]
	if !e3.UsedFallback || len(e3.Records) != 1 || e3.Records[0].Date != "2025-01-15" {
		t.Errorf("e3 should be dated by its publication date, got %+v", e3)
	}
	if e5 := byID["e5"]; e5.Row.Published != "" || e5.UsedFallback {
		t.Errorf("e5 NaN publication date should count as absent, got %+v", e5)
	}
	if e7 := byID["e7"]; len(e7.Records) != 0 || e7.UsedFallback {
		t.Errorf("e7 has an impossible date and must yield nothing, got %+v", e7)
	}
	if e8 := byID["e8"]; len(e8.Records) != 1 || e8.Records[0].StartColumn != "sunday_start_hour_pm" {
		t.Errorf("e8 = %+v", e8.Records)
	}

	report := output.NewReport(result, uuid.New(), "", files)
	var buf bytes.Buffer
	if err := output.NewTextFormatter(output.FormatOptions{}).Format(ctx, report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Summary: 8 rows processed, 6 rows with records, 12 total records") {
		t.Errorf("Unexpected text report:\n%s", buf.String())
	}
}

func TestE2E_CLI_RunJSON(t *testing.T) {
	configFile := writeConfig(t, "")

	stdout, stderr, code := runCLI(t, "run", "-o", "json", configFile)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if report.Summary.TotalRecords != wantRecords {
		t.Errorf("total records = %d, want %d", report.Summary.TotalRecords, wantRecords)
	}
	if len(report.Metadata.Sources) != 1 {
		t.Errorf("sources = %v", report.Metadata.Sources)
	}
	if report.Rows[1].ID != "e2" || report.Rows[1].Line != 3 {
		t.Errorf("second row = %s line %d, want e2 line 3", report.Rows[1].ID, report.Rows[1].Line)
	}
}

func TestE2E_CLI_RunICS(t *testing.T) {
	stdout, stderr, code := runCLI(t, "run", "-o", "ics", writeConfig(t, ""))
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	if n := strings.Count(stdout, "BEGIN:VEVENT"); n != wantRecords {
		t.Errorf("events = %d, want %d", n, wantRecords)
	}
	if !strings.Contains(stdout, "DTSTART:20241201T200000") {
		t.Error("Expected the 1 December 2024 20:00 event")
	}
}

func TestE2E_CLI_FailEmpty(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(csvPath, []byte("id,description\nx,rien\n"), 0644); err != nil {
		t.Fatal(err)
	}
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("sources: ["+csvPath+"]\ncolumns: {text: description}\nlogging: {level: error}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, code := runCLI(t, "run", "--fail-empty", configFile)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	_, _, code = runCLI(t, "run", configFile)
	if code != 0 {
		t.Errorf("exit code without --fail-empty = %d, want 0", code)
	}
}

func TestE2E_CLI_ConfigError(t *testing.T) {
	_, stderr, code := runCLI(t, "run", "/nonexistent/config.yaml")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "loading config") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestE2E_Store(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schedule.db")
	configFile := writeConfig(t, "store:\n  driver: sqlite\n  dsn: "+dbPath+"\n  table: agenda\n")

	stdout, stderr, code := runCLI(t, "run", "-o", "json", configFile)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	var report output.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}

	ctx := context.Background()
	s, err := store.Open(ctx, store.DriverSQLite, dbPath, "agenda")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	stored, err := s.ListRun(ctx, report.Metadata.RunID)
	if err != nil {
		t.Fatalf("ListRun() error = %v", err)
	}
	if len(stored) != wantRecords {
		t.Fatalf("stored = %d, want %d", len(stored), wantRecords)
	}

	ranges := 0
	for _, rec := range stored {
		if rec.EndTime != nil {
			ranges++
			if rec.RowID != "e2" || *rec.EndTime != "12:30:00" {
				t.Errorf("unexpected range record %+v", rec)
			}
		}
	}
	if ranges != 1 {
		t.Errorf("range records = %d, want 1", ranges)
	}

	// A second run appends under a new run id.
	if _, stderr, code := runCLI(t, "run", "-q", configFile); code != 0 {
		t.Fatalf("second run exit code = %d, stderr: %s", code, stderr)
	}
	total, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 2*wantRecords {
		t.Errorf("total stored = %d, want %d", total, 2*wantRecords)
	}
}

func TestE2E_Webhook_ConfigFile(t *testing.T) {
	var (
		mu      sync.Mutex
		bodies  [][]byte
		headers []http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	t.Setenv("EXTRACTTIME_TEST_TOKEN", "s3cret")
	configFile := writeConfig(t, `webhooks:
  - name: agenda
    url: `+server.URL+`
    token: ${EXTRACTTIME_TEST_TOKEN}
  - name: muted
    url: `+server.URL+`/never
    trigger: never
`)

	_, stderr, code := runCLI(t, "run", "-q", configFile)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("webhook calls = %d, want 1", len(bodies))
	}
	if got := headers[0].Get("Authorization"); got != "Bearer s3cret" {
		t.Errorf("Authorization = %q", got)
	}

	var report output.Report
	if err := json.Unmarshal(bodies[0], &report); err != nil {
		t.Fatalf("Invalid webhook payload: %v", err)
	}
	if report.Summary.TotalRecords != wantRecords {
		t.Errorf("payload total records = %d, want %d", report.Summary.TotalRecords, wantRecords)
	}
	if headers[0].Get("X-ExtractTime-Run") != report.Metadata.RunID {
		t.Error("run header should match the payload run id")
	}
	if !strings.Contains(stderr, "Webhook agenda: sent (202") {
		t.Errorf("stderr = %q", stderr)
	}
}

// TestE2E_Detect_WriteConfig generates a config from the fixture and runs it.
func TestE2E_Detect_WriteConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "generated.yaml")

	stdout, stderr, code := runCLI(t, "detect", "--write-config", configFile, eventsFile(t))
	if code != 0 {
		t.Fatalf("detect exit code = %d, stderr: %s", code, stderr)
	}
	for _, want := range []string{"Text column: description (index 1)", "Publication date column: date_publication (index 2)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("detect output should contain %q, got:\n%s", want, stdout)
		}
	}

	stdout, stderr, code = runCLI(t, "run", "-o", "json", configFile)
	if code != 0 {
		t.Fatalf("run exit code = %d, stderr: %s", code, stderr)
	}
	var report output.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if report.Summary.TotalRecords != wantRecords || report.Summary.FallbackRows != wantFallbackRows {
		t.Errorf("summary = %+v", report.Summary)
	}
}

func TestE2E_Diagnose(t *testing.T) {
	stdout, _, code := runCLI(t, "diagnose", "Le 31/04/2025 à 10h30")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout, "[DROP]") || !strings.Contains(stdout, "Records (0):") {
		t.Errorf("Unexpected diagnosis:\n%s", stdout)
	}
}
