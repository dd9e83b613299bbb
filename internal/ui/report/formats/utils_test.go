package formats

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Phase", input: "Phase 1: Core Backend Schema, Models & Configuration", expected: "phase-1-core-backend-schema-models--configuration"},
		{name: "Emoji", input: "📄 File: convex/users.ts", expected: "-file-convexusersts"},
		{name: "Underscore", input: "snake_case Title", expected: "snake_case-title"},
		{name: "Empty", input: "", expected: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := slugify(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestMakeAnchors(t *testing.T) {
	t.Parallel()

	got := makeAnchors([]string{"Summary", "Phase 1: A", "Summary", "summary"})
	want := []string{"summary", "phase-1-a", "summary-1", "summary-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("anchor %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFenceFor(t *testing.T) {
	t.Parallel()

	if got := fenceFor("const a = `x`;"); got != "```" {
		t.Fatalf("expected default fence, got %q", got)
	}
	if got := fenceFor("/* ```ts\nexample\n``` */"); got != "````" {
		t.Fatalf("expected longer fence, got %q", got)
	}
}

func TestLanguageTag(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a.ts":          "ts",
		"b.TSX":         "tsx",
		"c.jsx":         "jsx",
		"d.mjs":         "js",
		"package.json":  "json",
		"schema.prisma": "",
	}
	for path, want := range cases {
		if got := languageTag(path); got != want {
			t.Errorf("languageTag(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestTSVField(t *testing.T) {
	t.Parallel()

	if got := tsvField("a\tb\nc\r\nd"); got != "a b c d" {
		t.Fatalf("unexpected tsv field %q", got)
	}
}
