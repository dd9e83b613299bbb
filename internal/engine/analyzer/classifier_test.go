package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DomainPriority(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "convex/schema.ts", want: "Database Schema Definition"},
		{path: "src/store/useCodeEditorStore.ts", want: "State Management Store"},
		{path: "src/hooks/useSessionActivity.ts", want: "Custom React Hook"},
		{path: "src/middleware.ts", want: "Middleware"},
		{path: "src/app/api/session-leave/route.ts", want: "API Route Handler"},
		{path: "src/utils/sessionId.ts", want: "Utility Functions"},
		{path: "convex/sessionFolders.ts", want: "Business Logic"},
		{path: "src/lib/helpers/format.ts", want: "Utility Functions"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Classify(tt.path, "")
			domain, ok := got.Domain()
			require.True(t, ok, "expected a domain tag")
			assert.Equal(t, tt.want, domain.Label)
			assert.Equal(t, KindDomain, got.Observations[0].Kind)
		})
	}
}

func TestClassify_SchemaPathIgnoresContent(t *testing.T) {
	for _, text := range []string{"", "random text", "export const x = () => 1\nimport y from 'z'"} {
		got := Classify("convex/schema.ts", text)
		domain, ok := got.Domain()
		require.True(t, ok)
		assert.Equal(t, "Database Schema Definition", domain.Label)
	}
}

func TestClassify_NoDomainStillReportsCounts(t *testing.T) {
	got := Classify("src/components/Button.tsx", "")
	_, ok := got.Domain()
	assert.False(t, ok)
	require.Len(t, got.Observations, 1)
	assert.Equal(t, KindCounts, got.Observations[0].Kind)
	assert.Equal(t, "Contains: 0 imports, 0 exports, ~0 functions/constants", got.Observations[0].Label)
}

func TestClassify_CountsOverlap(t *testing.T) {
	text := "import a from 'a'\n" +
		"import b from 'b'\n" +
		"export function foo() {}\n" +
		"export const bar = () => 1\n" +
		"  import c from 'c'\n"

	got := Classify("src/components/Widget.tsx", text)
	assert.Equal(t, 2, got.Imports, "indented imports are not counted")
	assert.Equal(t, 2, got.Exports)
	assert.Equal(t, 2, got.Functions)
}

func TestClassify_TechnologyTags(t *testing.T) {
	text := `import { useQuery } from "convex/react";
import { useUser } from "@clerk/nextjs";
import Editor from "@monaco-editor/react";`

	got := Classify("src/components/Editor.tsx", text)
	assert.Equal(t, []string{
		"Uses Convex backend framework",
		"Integrates Clerk authentication",
		"Integrates Monaco code editor",
	}, got.Technologies())
}

func TestClassify_ConvexTagIsCaseSensitive(t *testing.T) {
	got := Classify("src/components/About.tsx", "Powered by Convex and ZUSTAND")
	assert.Equal(t, []string{"Uses Zustand for state management"}, got.Technologies())
}

func TestClassification_StringUsesInlineMarkup(t *testing.T) {
	got := Classify("convex/schema.ts", `import { defineSchema } from "convex/server"`)
	out := got.String()
	assert.Contains(t, out, "<b>Database Schema Definition</b>")
	assert.Contains(t, out, "<br/>")
	assert.Contains(t, out, "Contains: 1 imports, 0 exports, ~0 functions/constants")
}
