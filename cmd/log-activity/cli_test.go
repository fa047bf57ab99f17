package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
	_ "modernc.org/sqlite"

	"github.com/dratasich/log-activity/internal/report"
)

func TestIsCLIMode(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "report command", args: []string{"log-activity", "report"}, want: true},
		{name: "classify command", args: []string{"log-activity", "classify", "AP-7"}, want: true},
		{name: "help flag", args: []string{"log-activity", "--help"}, want: true},
		{name: "version flag", args: []string{"log-activity", "-v"}, want: true},
		{name: "config flag", args: []string{"log-activity", "--config", "x.yaml"}, want: true},
		{name: "no args is server mode", args: []string{"log-activity"}, want: false},
		{name: "unknown arg is server mode", args: []string{"log-activity", "serve"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			if got := isCLIMode(); got != tt.want {
				t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestSkipSummary(t *testing.T) {
	if err := skipSummary(nil); err != nil {
		t.Errorf("skipSummary(nil) = %v, want nil", err)
	}

	skipped := []report.Diagnostic{
		{Source: "calendar", Reason: "missing subject"},
		{Source: "calendar", Reason: "missing subject"},
		{Source: "presence", Reason: "malformed timestamp"},
	}
	err := skipSummary(skipped)
	if err == nil {
		t.Fatal("skipSummary() = nil, want non-nil for dropped records")
	}
	exitErr, ok := err.(cli.ExitCoder)
	if !ok {
		t.Fatalf("skipSummary() error is not an ExitCoder: %T", err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(err.Error(), "skipped 3 records") {
		t.Errorf("Error() = %q, want total count", err.Error())
	}
}

// newFixture writes an aw-server database and a config file pointing
// at it, and returns the config path and output directory.
func newFixture(t *testing.T) (configPath, outDir string) {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "aw.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	stmts := []string{
		`CREATE TABLE bucketmodel (key INTEGER PRIMARY KEY, id TEXT, client TEXT)`,
		`CREATE TABLE eventmodel (id INTEGER PRIMARY KEY, bucket_id INTEGER, timestamp TEXT, duration REAL, datastr TEXT)`,
		`INSERT INTO bucketmodel VALUES (1, 'aw-watcher-afk_host', 'aw-watcher-afk')`,
		`INSERT INTO eventmodel VALUES (1, 1, '2024-03-04 09:00:00.000000+00:00', 28800.0, '{"status": "not-afk"}')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}

	configPath = filepath.Join(dir, "config.yaml")
	content := "sources:\n  activitywatch: " + dbPath + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return configPath, filepath.Join(dir, "out")
}

func TestReportCommand(t *testing.T) {
	configPath, outDir := newFixture(t)

	app := newCLIApp()
	args := []string{"log-activity", "--config", configPath,
		"report", "--from", "2024-03-01", "--to", "2024-04-01", "--out-dir", outDir}
	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "working_time.csv"))
	if err != nil {
		t.Fatalf("working-time ledger not written: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "date,active,lunch_incl,start,end,violations\n") {
		t.Errorf("header missing:\n%s", content)
	}
	if !strings.Contains(content, "2024-03-04,08:00,true,09:00,17:30,") {
		t.Errorf("day row missing:\n%s", content)
	}

	data, err = os.ReadFile(filepath.Join(outDir, "activities.csv"))
	if err != nil {
		t.Fatalf("activity ledger not written: %v", err)
	}
	if !strings.Contains(string(data), "2024-03-04,other,08:00,8,") {
		t.Errorf("other-bucket row missing:\n%s", string(data))
	}
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `rules:
  - group: project-by-issue
    patterns:
      - label: apollo
        pattern: AP-\d+
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	app := newCLIApp()
	args := []string{"log-activity", "--config", configPath,
		"classify", "--group", "project-by-issue", "AP-7 fix rounding"}
	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run: %v", err)
	}
}

func TestRulesCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `rules:
  - group: project-by-issue
    patterns:
      - label: apollo
        pattern: AP-\d+
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	app := newCLIApp()
	if err := app.Run([]string{"log-activity", "--config", configPath, "rules"}); err != nil {
		t.Fatalf("app.Run: %v", err)
	}
}
