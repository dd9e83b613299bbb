package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveLoadRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	run := Run{
		ProjectKey:      "web",
		StartedAt:       base,
		FinishedAt:      base.Add(1500 * time.Millisecond),
		PhaseCount:      4,
		FilesDocumented: 2,
		FilesMissing:    1,
		UnitsExplained:  7,
		UnitsDropped:    1,
		MarkersAdded:    2,
		Files: []RunFile{
			{Path: "convex/schema.ts", Phase: 1, Found: true, Domain: "Database Schema Definition", Functions: 0, ListingChars: 420},
			{Path: "convex/users.ts", Phase: 2, Found: true, Domain: "", Functions: 7, DroppedUnits: 1, ListingChars: 3100, SyntaxErrors: 2},
			{Path: "convex/missing.ts", Phase: 2},
		},
	}

	id, err := store.SaveRun(ctx, run)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected generated uuid, got %q: %v", id, err)
	}

	runs, err := store.LoadRuns(ctx, "web", time.Time{})
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != id || got.UnitsExplained != 7 || got.MarkersAdded != 2 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(base) || got.FinishedAt.Sub(got.StartedAt) != 1500*time.Millisecond {
		t.Fatalf("timestamps did not roundtrip: %v %v", got.StartedAt, got.FinishedAt)
	}

	files, err := store.LoadRunFiles(ctx, id)
	if err != nil {
		t.Fatalf("load run files: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	if files[0].Path != "convex/schema.ts" || !files[0].Found {
		t.Fatalf("unexpected first file: %+v", files[0])
	}
	if files[1].SyntaxErrors != 2 || files[1].DroppedUnits != 1 {
		t.Fatalf("unexpected second file: %+v", files[1])
	}
	if files[2].Found {
		t.Fatalf("missing file should roundtrip as not found")
	}
}

func TestStore_LoadRunsSinceAndOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	// Sub-second timestamps must still sort after whole seconds.
	for _, ts := range []time.Time{base.Add(2 * time.Hour), base, base.Add(500 * time.Millisecond)} {
		if _, err := store.SaveRun(ctx, Run{StartedAt: ts}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.LoadRuns(ctx, "", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].StartedAt.Before(all[i-1].StartedAt) {
			t.Fatalf("runs out of order: %v before %v", all[i].StartedAt, all[i-1].StartedAt)
		}
	}

	recent, err := store.LoadRuns(ctx, "default", base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 run after since filter, got %d", len(recent))
	}
}

func TestStore_ProjectIsolationAndPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	oldID, err := store.SaveRun(ctx, Run{ProjectKey: "a", StartedAt: base, Files: []RunFile{{Path: "x.ts", Phase: 1, Found: true}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveRun(ctx, Run{ProjectKey: "a", StartedAt: base.Add(48 * time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveRun(ctx, Run{ProjectKey: "b", StartedAt: base}); err != nil {
		t.Fatal(err)
	}

	removed, err := store.PruneBefore(ctx, "a", base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned run, got %d", removed)
	}
	files, err := store.LoadRunFiles(ctx, oldID)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("expected files to cascade, got %d", len(files))
	}

	bRuns, err := store.LoadRuns(ctx, "b", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(bRuns) != 1 {
		t.Fatalf("project b should be untouched, got %d runs", len(bRuns))
	}
}

func TestStore_DuplicateIDFails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	if _, err := store.SaveRun(ctx, Run{ID: id}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveRun(ctx, Run{ID: id}); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir(), 0)
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path, 0)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildTrendReport(t *testing.T) {
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: "r1", StartedAt: base, FilesDocumented: 20, FilesMissing: 3, UnitsExplained: 40, UnitsDropped: 10},
		{ID: "r2", StartedAt: base.Add(2 * time.Hour), FilesDocumented: 22, FilesMissing: 1, UnitsExplained: 60},
		{ID: "r3", StartedAt: base.Add(30 * time.Hour), FilesDocumented: 22, FilesMissing: 1, UnitsExplained: 50},
	}

	report, err := BuildTrendReport("", runs, 24*time.Hour)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.RunCount != 3 || report.ProjectKey != "default" {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.Points[0].DropRatePct != 20 {
		t.Fatalf("expected drop rate 20%%, got %v", report.Points[0].DropRatePct)
	}
	if report.Points[1].DeltaDocumented != 2 || report.Points[1].DeltaMissing != -2 {
		t.Fatalf("unexpected deltas: %+v", report.Points[1])
	}
	if report.Points[1].AvgExplained != 50 {
		t.Fatalf("expected moving average 50, got %v", report.Points[1].AvgExplained)
	}
	if report.Points[2].AvgExplained != 50 {
		t.Fatalf("window should exclude older runs, got %v", report.Points[2].AvgExplained)
	}

	if _, err := BuildTrendReport("x", nil, time.Hour); err == nil {
		t.Fatal("expected error for empty run list")
	}
}

func TestIsCorruptError(t *testing.T) {
	if !IsCorruptError(errors.New("database disk image is malformed")) {
		t.Fatal("expected malformed sqlite message to be treated as corrupt")
	}
}
