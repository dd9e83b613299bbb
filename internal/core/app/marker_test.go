package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logicdoc/internal/core/ports"
)

func TestMarkerLine(t *testing.T) {
	cases := []struct {
		ext  string
		want string
		ok   bool
	}{
		{ext: ".ts", want: "// M\n", ok: true},
		{ext: ".TSX", want: "// M\n", ok: true},
		{ext: ".jsx", want: "// M\n", ok: true},
		{ext: ".json", ok: false},
		{ext: ".py", want: "# M\n", ok: true},
		{ext: "", want: "# M\n", ok: true},
	}
	for _, tc := range cases {
		got, ok := markerLine(tc.ext, "M")
		if ok != tc.ok || got != tc.want {
			t.Errorf("markerLine(%q) = %q, %v; want %q, %v", tc.ext, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMarkerWriter_Apply(t *testing.T) {
	root := writeProject(t, map[string]string{"next.config.mjs": "export default {};\n"})
	path := filepath.Join(root, "next.config.mjs")

	var written []string
	w := &markerWriter{
		template:   "DOCUMENTED BY SCRIPT - Phase %d",
		afterWrite: func(p string) { written = append(written, p) },
	}
	src := source{Rel: "next.config.mjs", Abs: path, Text: "export default {};\n"}

	outcome, err := w.Apply(src, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Added || len(written) != 1 || written[0] != path {
		t.Fatalf("expected marker write, got %+v (written %v)", outcome, written)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "// DOCUMENTED BY SCRIPT - Phase 1\nexport default {};\n" {
		t.Fatalf("unexpected content: %q", data)
	}

	src.Text = string(data)
	outcome, err = w.Apply(src, 1)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Added {
		t.Fatal("marker already present; expected no-op")
	}

	// A different phase is a different marker.
	outcome, err = w.Apply(src, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Added {
		t.Fatal("expected phase 3 marker to be added")
	}
}

func TestMarkerWriter_DryRunDiff(t *testing.T) {
	w := &markerWriter{template: "DOCUMENTED BY SCRIPT - Phase %d", dryRun: true}
	src := source{Rel: "convex/users.ts", Abs: filepath.Join(t.TempDir(), "users.ts"), Text: "export const a = 1;\n"}

	outcome, err := w.Apply(src, 2)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Added {
		t.Fatal("dry run must not report an added marker")
	}
	for _, want := range []string{"--- a/convex/users.ts", "+++ b/convex/users.ts", "+// DOCUMENTED BY SCRIPT - Phase 2"} {
		if !strings.Contains(outcome.Diff, want) {
			t.Fatalf("diff missing %q:\n%s", want, outcome.Diff)
		}
	}
	if _, err := os.Stat(src.Abs); !os.IsNotExist(err) {
		t.Fatal("dry run created the file")
	}
}

func TestMarkerWriter_KeepsNonUTF8Bytes(t *testing.T) {
	raw := []byte("// caf\xe9 latin-1 comment\nexport const a = 1;\n")
	path := filepath.Join(t.TempDir(), "users.ts")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	w := &markerWriter{template: "DOCUMENTED BY SCRIPT - Phase %d"}
	src := source{Rel: "convex/users.ts", Abs: path, Raw: raw, Text: strings.ToValidUTF8(string(raw), "\uFFFD")}
	outcome, err := w.Apply(src, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Added {
		t.Fatal("expected marker write")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := append([]byte("// DOCUMENTED BY SCRIPT - Phase 2\n"), raw...)
	if !bytes.Equal(got, want) {
		t.Fatalf("file bytes changed:\n got %q\nwant %q", got, want)
	}
}

func TestGenerate_MarkerPreservesLatin1Source(t *testing.T) {
	raw := "// caf\xe9 latin-1 comment\n" + usersSource
	root := writeProject(t, map[string]string{
		"package.json":    "{}",
		"convex/users.ts": raw,
	})
	cfg, paths := testConfig(t, root)
	app, err := NewWithDependencies(cfg, paths, Dependencies{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	result, _, err := app.Generate(context.Background(), ports.GenerateRequest{Phases: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	if result.MarkersAdded != 1 {
		t.Fatalf("expected one marker, got %d", result.MarkersAdded)
	}

	got, err := os.ReadFile(filepath.Join(root, "convex", "users.ts"))
	if err != nil {
		t.Fatal(err)
	}
	want := "// DOCUMENTED BY SCRIPT - Phase 2\n" + raw
	if string(got) != want {
		t.Fatalf("source rewritten with replaced bytes:\n got %q\nwant %q", got, want)
	}
}
