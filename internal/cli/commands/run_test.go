package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/VictorBaumgartner/ExtractTime/pkg/config"
	"github.com/VictorBaumgartner/ExtractTime/pkg/output"
	"github.com/VictorBaumgartner/ExtractTime/pkg/store"
)

func resetExitCode(t *testing.T) {
	t.Helper()
	ExitCode = 0
	t.Cleanup(func() { ExitCode = 0 })
}

func TestRunRun_JSONReport(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "events.csv", eventsCSV)
	configPath := writeFile(t, tmpDir, "config.yaml", `sources:
  - `+filepath.Join(tmpDir, "*.csv")+`
columns:
  text: description
workers: 2
logging:
  level: error
`)

	out, err := execute(t, NewRunCommand(), "-o", "json", configPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}

	if report.Summary.RowsProcessed != 3 {
		t.Errorf("RowsProcessed = %d, want 3", report.Summary.RowsProcessed)
	}
	if report.Summary.RowsWithRecords != 2 {
		t.Errorf("RowsWithRecords = %d, want 2", report.Summary.RowsWithRecords)
	}
	if report.Summary.TotalRecords != 5 {
		t.Errorf("TotalRecords = %d, want 5", report.Summary.TotalRecords)
	}
	if report.Summary.FallbackRows != 1 {
		t.Errorf("FallbackRows = %d, want 1", report.Summary.FallbackRows)
	}

	wantIDs := []string{"a1", "a2", "a3"}
	for i, row := range report.Rows {
		if row.ID != wantIDs[i] {
			t.Errorf("Rows[%d].ID = %q, want %q", i, row.ID, wantIDs[i])
		}
	}
	if report.Metadata.ConfigFile != configPath {
		t.Errorf("ConfigFile = %q, want %q", report.Metadata.ConfigFile, configPath)
	}
	if report.Metadata.RunID == "" {
		t.Error("Expected a run ID")
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
}

func TestRunRun_ICSUniqueUIDsAcrossFiles(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.csv", "title,text\nx,Concert le 20/04/2025 à 10h30\n")
	writeFile(t, tmpDir, "b.csv", "title,text\ny,Concert le 20/04/2025 à 10h30\n")
	configPath := writeFile(t, tmpDir, "config.yaml", "sources:\n  - "+filepath.Join(tmpDir, "*.csv")+"\nlogging:\n  level: error\n")

	out, err := execute(t, NewRunCommand(), "-o", "ics", configPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	uids := map[string]bool{}
	for line := range strings.Lines(out) {
		if uid, ok := strings.CutPrefix(strings.TrimSpace(line), "UID:"); ok {
			uids[uid] = true
		}
	}
	if len(uids) != 2 {
		t.Errorf("got %d distinct UIDs, want 2:\n%s", len(uids), out)
	}
}

func TestRunRun_SavesToStore(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	csvPath := writeFile(t, tmpDir, "events.csv", eventsCSV)
	dbPath := filepath.Join(tmpDir, "schedule.db")
	configPath := writeFile(t, tmpDir, "config.yaml", `sources:
  - `+csvPath+`
columns:
  text: description
logging:
  level: error
store:
  driver: sqlite
  dsn: `+dbPath+`
`)

	if _, err := execute(t, NewRunCommand(), "-q", configPath); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	ctx := context.Background()
	s, err := store.Open(ctx, store.DriverSQLite, dbPath, "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 5 {
		t.Errorf("stored records = %d, want 5", n)
	}
}

func TestRunRun_Webhook(t *testing.T) {
	resetExitCode(t)
	var calls atomic.Int32
	var runHeader atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		runHeader.Store(r.Header.Get("X-ExtractTime-Run"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	csvPath := writeFile(t, tmpDir, "events.csv", eventsCSV)
	configPath := writeFile(t, tmpDir, "config.yaml", "sources:\n  - "+csvPath+"\ncolumns:\n  text: description\nlogging:\n  level: error\n")

	cmd := NewRunCommand()
	var stderr bytes.Buffer
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-o", "json", "--webhook-url", server.URL, "--webhook-trigger", "always", configPath})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("webhook calls = %d, want 1", calls.Load())
	}

	var report output.Report
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if got := runHeader.Load(); got != report.Metadata.RunID {
		t.Errorf("X-ExtractTime-Run = %v, want %q", got, report.Metadata.RunID)
	}
	if !strings.Contains(stderr.String(), "Webhook cli: sent (200") {
		t.Errorf("Expected webhook status on stderr, got %q", stderr.String())
	}
}

func TestRunRun_FailEmpty(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	csvPath := writeFile(t, tmpDir, "events.csv", "id,description\nx1,Pas de date\nx2,Rien ici\n")
	configPath := writeFile(t, tmpDir, "config.yaml", "sources:\n  - "+csvPath+"\ncolumns:\n  text: description\nlogging:\n  level: error\n")

	out, err := execute(t, NewRunCommand(), "--fail-empty", configPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode)
	}
	if !strings.Contains(out, "Summary: 2 rows processed, 0 rows with records, 0 total records") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestRunRun_MissingFile(t *testing.T) {
	resetExitCode(t)
	if _, err := execute(t, NewRunCommand(), "/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunRun_MissingSource(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	configPath := writeFile(t, tmpDir, "config.yaml", "sources:\n  - "+filepath.Join(tmpDir, "missing.csv")+"\nlogging:\n  level: error\n")

	_, err := execute(t, NewRunCommand(), configPath)
	if err == nil {
		t.Fatal("Expected error for missing source file")
	}
	if !strings.Contains(err.Error(), "extraction failed") {
		t.Errorf("Expected extraction error, got: %v", err)
	}
}

func TestRunRun_InvalidOutputFlag(t *testing.T) {
	resetExitCode(t)
	tmpDir := t.TempDir()
	csvPath := writeFile(t, tmpDir, "events.csv", eventsCSV)
	configPath := writeFile(t, tmpDir, "config.yaml", "sources:\n  - "+csvPath+"\n")

	_, err := execute(t, NewRunCommand(), "--output", "xml", configPath)
	if err == nil {
		t.Fatal("Expected error for invalid output format")
	}
	if !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("Expected unknown format error, got: %v", err)
	}
}

func TestCollectWebhooks(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", `sources: [a.csv]
webhooks:
  - name: ops
    url: https://hooks.example.com/a
`)
	cfg, err := config.Load(context.Background(), cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	opts := &RunOptions{WebhookURL: "https://hooks.example.com/cli", WebhookToken: "tok"}
	hooks := collectWebhooks(cfg, opts)

	if len(hooks) != 2 {
		t.Fatalf("webhooks = %d, want 2", len(hooks))
	}
	if hooks[0].Name != "ops" {
		t.Errorf("first webhook = %q, want ops", hooks[0].Name)
	}
	if hooks[1].Name != "cli" || hooks[1].Token != "tok" || hooks[1].Trigger != config.WebhookTriggerOnRecords {
		t.Errorf("CLI webhook = %+v", hooks[1])
	}
}
