package formats

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// slugify follows GitHub's heading anchor rules: lower-case, keep letters,
// digits, '-' and '_', turn spaces into '-', drop everything else.
func slugify(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(heading)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// makeAnchors maps each heading to a unique anchor, suffixing repeats with
// -1, -2 and so on the way GitHub does.
func makeAnchors(headings []string) []string {
	out := make([]string, len(headings))
	used := make(map[string]int, len(headings))
	for i, h := range headings {
		base := slugify(h)
		n := used[base]
		used[base] = n + 1
		if n == 0 {
			out[i] = base
			continue
		}
		out[i] = fmt.Sprintf("%s-%d", base, n)
	}
	return out
}

// fenceFor returns a backtick fence longer than any backtick run in content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func languageTag(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return "ts"
	case ".tsx":
		return "tsx"
	case ".js", ".mjs", ".cjs":
		return "js"
	case ".jsx":
		return "jsx"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// tsvField flattens a value onto one TSV cell.
func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
