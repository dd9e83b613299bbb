package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"logicdoc/internal/core/config"
	"logicdoc/internal/core/ports"
	"logicdoc/internal/data/history"
	"logicdoc/internal/ui/report"
)

func TestApplyModeOptions_Conflicts(t *testing.T) {
	tests := []struct {
		name string
		opts cliOptions
		want string
	}{
		{name: "once and watch", opts: cliOptions{once: true, watch: true}, want: "--once cannot be combined"},
		{name: "marker modes", opts: cliOptions{dryRunMarkers: true, noMarkers: true}, want: "cannot be combined"},
		{name: "history outputs", opts: cliOptions{historyTSV: "trend.tsv"}, want: "require --history"},
		{name: "since without history", opts: cliOptions{since: "2026-01-01"}, want: "--since requires --history"},
		{name: "bad window", opts: cliOptions{history: true, historyWindow: "0h"}, want: "must be > 0"},
		{name: "bad phase", opts: cliOptions{phases: "1,x"}, want: "--phase"},
		{name: "two roots", opts: cliOptions{args: []string{"a", "b"}}, want: "at most one"},
		{name: "root twice", opts: cliOptions{root: "a", args: []string{"b"}}, want: "cannot be combined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := applyModeOptions(&opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplyModeOptions_PositionalRoot(t *testing.T) {
	opts := cliOptions{args: []string{"./web"}}
	if err := applyModeOptions(&opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.root != "./web" {
		t.Fatalf("expected positional root, got %q", opts.root)
	}
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--watch", "--phase", "2,4", "--dry-run-markers", "./app"})
	if err != nil {
		t.Fatal(err)
	}
	if !opts.watch || !opts.dryRunMarkers || opts.phases != "2,4" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.configPath != defaultConfigPath || opts.configSet {
		t.Fatalf("unexpected config path %q (set=%v)", opts.configPath, opts.configSet)
	}
	if len(opts.args) != 1 || opts.args[0] != "./app" {
		t.Fatalf("unexpected args: %v", opts.args)
	}
}

func TestParsePhaseList(t *testing.T) {
	got, err := parsePhaseList(" 4, 2,4 ")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 4 || got[1] != 2 {
		t.Fatalf("unexpected phases: %v", got)
	}
	if got, err := parsePhaseList(""); err != nil || got != nil {
		t.Fatalf("empty list should select all phases, got %v, %v", got, err)
	}
	if _, err := parsePhaseList("0"); err == nil {
		t.Fatal("expected error for phase 0")
	}
}

func TestGenerateRequest_RejectsUnknownPhase(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := generateRequest(cliOptions{phases: "9"}, cfg); err == nil {
		t.Fatal("expected unknown phase error")
	}
	req, err := generateRequest(cliOptions{phases: "2", noMarkers: true}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Phases) != 1 || req.Phases[0] != 2 || !req.SkipMarkers || req.Trigger != "cli" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantZero  bool
		wantError bool
	}{
		{name: "empty", input: "", wantZero: true},
		{name: "date", input: "2026-02-13"},
		{name: "rfc3339", input: "2026-02-13T15:00:00Z"},
		{name: "invalid", input: "13/02/2026", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSince(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantZero && !got.Equal(time.Time{}) {
				t.Fatalf("expected zero time, got %v", got)
			}
			if !tt.wantZero && got.IsZero() {
				t.Fatal("expected non-zero parsed time")
			}
		})
	}
}

func TestParseHistoryWindow(t *testing.T) {
	if d, err := parseHistoryWindow(""); err != nil || d != 24*time.Hour {
		t.Fatalf("expected 24h default, got %v, %v", d, err)
	}
	if _, err := parseHistoryWindow("soon"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfig_DefaultDiscovery(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "data", "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(tmpDir, "data", "config", "logicdoc.toml")
	body := "[report]\ntitle = \"Custom Title\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, found, err := loadConfig(defaultConfigPath, false, tmpDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if found != cfgPath || cfg.Report.Title != "Custom Title" {
		t.Fatalf("unexpected config %q: %+v", found, cfg.Report)
	}
}

func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	cfg, found, err := loadConfig(defaultConfigPath, false, t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if found != "" || len(cfg.Phases) != 4 {
		t.Fatalf("expected built-in phases, got %q with %d phases", found, len(cfg.Phases))
	}
}

func TestLoadConfig_CustomPathNoFallback(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.toml")

	_, _, err := loadConfig(custom, true, t.TempDir())
	if err == nil {
		t.Fatal("expected missing custom config error")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadConfig_ExplicitDefaultPathIsNotDiscovery(t *testing.T) {
	opts, err := parseOptions([]string{"--config", defaultConfigPath})
	if err != nil {
		t.Fatal(err)
	}
	if !opts.configSet {
		t.Fatal("an explicit --config must be recorded even when it equals the default")
	}

	tmpDir := t.TempDir()
	discoverable := filepath.Join(tmpDir, "logicdoc.toml")
	if err := os.WriteFile(discoverable, []byte("[report]\ntitle = \"Discovered\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(tmpDir, "data", "config", "logicdoc.toml")

	_, found, err := loadConfig(missing, opts.configSet, tmpDir)
	if err == nil {
		t.Fatalf("expected the named config to be required, discovered %q instead", found)
	}
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

type trendStub struct {
	report history.TrendReport
	err    error
}

func (s trendStub) Generate(context.Context, ports.GenerateRequest) (ports.GenerateResult, error) {
	return ports.GenerateResult{}, nil
}

func (s trendStub) Trend(context.Context, time.Time, time.Duration) (history.TrendReport, error) {
	return s.report, s.err
}

func TestRunHistoryMode_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := trendStub{report: history.TrendReport{
		SchemaVersion: history.SchemaVersion,
		ProjectKey:    "web",
		Since:         now,
		Until:         now,
		Window:        "24h0m0s",
		RunCount:      1,
		Points:        []history.TrendPoint{{RunID: "r1", Timestamp: now, FilesDocumented: 5, UnitsExplained: 9}},
	}}
	opts := cliOptions{
		history:     true,
		historyTSV:  filepath.Join(dir, "out", "trend.tsv"),
		historyJSON: filepath.Join(dir, "out", "trend.json"),
	}

	trend, err := runHistoryMode(context.Background(), opts, svc)
	if err != nil {
		t.Fatalf("history mode: %v", err)
	}
	if trend == nil || trend.RunCount != 1 {
		t.Fatalf("unexpected trend: %+v", trend)
	}

	raw, err := os.ReadFile(opts.historyJSON)
	if err != nil {
		t.Fatal(err)
	}
	var decoded history.TrendReport
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded.ProjectKey != "web" {
		t.Fatalf("unexpected project key %q", decoded.ProjectKey)
	}
	if _, err := os.Stat(opts.historyTSV); err != nil {
		t.Fatalf("expected tsv output: %v", err)
	}
}

func TestRunHistoryMode_NoRuns(t *testing.T) {
	trend, err := runHistoryMode(context.Background(), cliOptions{history: true}, trendStub{err: history.ErrNoRuns})
	if err != nil {
		t.Fatalf("empty history should not fail: %v", err)
	}
	if trend != nil {
		t.Fatalf("expected no trend, got %+v", trend)
	}

	trend, err = runHistoryMode(context.Background(), cliOptions{}, nil)
	if err != nil || trend != nil {
		t.Fatalf("history mode should be a no-op without --history, got %v, %v", trend, err)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	res := ports.GenerateResult{
		RunID:           "run-1",
		Duration:        1500 * time.Millisecond,
		Phases:          []ports.PhaseResult{{Number: 2, Title: "Backend", Documented: 3, Missing: 1}},
		FilesDocumented: 3,
		FilesMissing:    1,
		UnitsExplained:  7,
		Written:         []string{"docs/documentation.md"},
		MarkerDiffs:     []string{"--- a/convex/users.ts\n+++ b/convex/users.ts\n"},
		Warnings:        []string{"publish failed"},
	}
	printSummary(&buf, res, report.Document{Summary: report.Summary{PhasesCompleted: 1}})

	out := buf.String()
	for _, want := range []string{"run-1", "Phase 2: Backend", "1 missing", "wrote docs/documentation.md", "+++ b/convex/users.ts", "publish failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
