package cli

import (
	"strings"
	"testing"
	"time"

	"logicdoc/internal/data/history"
	"logicdoc/internal/ui/report"

	tea "github.com/charmbracelet/bubbletea"
)

func sampleUpdate() updateMsg {
	return updateMsg{
		doc: report.Document{
			RunID:       "run-1",
			GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			ProjectRoot: "/work/web",
			Phases: []report.Phase{
				{Number: 2, Title: "Backend", Files: []report.FileSection{
					{
						Path:   "convex/users.ts",
						Found:  true,
						Domain: "Users",
						Functions: []report.FunctionEntry{
							{Name: "getUser", Async: true, Params: []string{"id"}, StartLine: 3, EndLine: 9, Explanation: "Fetches a user."},
							{Name: "listUsers", StartLine: 11, EndLine: 14},
						},
					},
					{Path: "convex/missing.ts"},
				}},
			},
		},
		documented: 1,
		missing:    1,
	}
}

func TestModel_UpdatePopulatesFileList(t *testing.T) {
	m := initialModel("", nil)

	updated, _ := m.Update(sampleUpdate())
	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	if len(state.fileList.Items()) != 2 {
		t.Fatalf("expected 2 file items, got %d", len(state.fileList.Items()))
	}
	if state.root != "/work/web" || state.runID != "run-1" {
		t.Fatalf("unexpected run state: root=%q run=%q", state.root, state.runID)
	}
	first := state.fileList.Items()[0].(item)
	if !strings.Contains(first.desc, "2 functions") || !strings.Contains(first.desc, "Users") {
		t.Fatalf("unexpected description %q", first.desc)
	}
	second := state.fileList.Items()[1].(item)
	if !strings.Contains(second.desc, "not found") {
		t.Fatalf("unexpected description %q", second.desc)
	}
}

func TestModel_DetailsAndFunctionCursor(t *testing.T) {
	m := initialModel("", nil)
	updated, _ := m.Update(sampleUpdate())
	state := updated.(model)

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEnter})
	state = updated.(model)
	if !state.showDetails || state.selected.section.Path != "convex/users.ts" {
		t.Fatalf("expected users.ts details, got %+v", state.selected)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	state = updated.(model)
	if state.selectedFunc != 1 {
		t.Fatalf("expected cursor on second function, got %d", state.selectedFunc)
	}
	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	state = updated.(model)
	if state.selectedFunc != 1 {
		t.Fatalf("cursor should stop at the last function, got %d", state.selectedFunc)
	}

	target, ok := selectedSourceTarget(state)
	if !ok || target.line != 11 || target.file != "/work/web/convex/users.ts" {
		t.Fatalf("unexpected source target: %+v", target)
	}
	if view := renderDetails(state); !strings.Contains(view, "-> listUsers()") {
		t.Fatalf("detail view should highlight listUsers:\n%s", view)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEsc})
	state = updated.(model)
	if state.showDetails {
		t.Fatal("expected details to close on esc")
	}
}

func TestModel_RebuildKeepsOrClosesDetails(t *testing.T) {
	m := initialModel("", nil)
	updated, _ := m.Update(sampleUpdate())
	updated, _ = updated.(model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	state := updated.(model)

	rebuilt := sampleUpdate()
	rebuilt.doc.Phases[0].Files[0].Functions = rebuilt.doc.Phases[0].Files[0].Functions[:1]
	updated, _ = state.Update(rebuilt)
	state = updated.(model)
	if !state.showDetails || len(state.selected.section.Functions) != 1 {
		t.Fatalf("expected refreshed details, got %+v", state.selected.section)
	}

	gone := sampleUpdate()
	gone.doc.Phases[0].Files = gone.doc.Phases[0].Files[1:]
	updated, _ = state.Update(gone)
	state = updated.(model)
	if state.showDetails {
		t.Fatal("details should close when the file leaves the run")
	}
}

func TestModel_TrendToggle(t *testing.T) {
	trend := &history.TrendReport{
		Window:   "24h0m0s",
		RunCount: 2,
		Points: []history.TrendPoint{
			{FilesDocumented: 4},
			{FilesDocumented: 5, DeltaDocumented: 1, UnitsExplained: 8, DeltaExplained: 2},
		},
	}
	m := initialModel("", trend)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	state := updated.(model)
	if !state.showTrend {
		t.Fatal("expected trend overlay toggled on")
	}
	if overlay := renderTrendOverlay(state.trendReport); !strings.Contains(overlay, "Files documented: 5 (+1)") {
		t.Fatalf("unexpected overlay:\n%s", overlay)
	}
	if overlay := renderTrendOverlay(nil); !strings.Contains(overlay, "unavailable") {
		t.Fatalf("unexpected empty overlay: %q", overlay)
	}
}
