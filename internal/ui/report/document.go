// Package report holds the documentation document model shared by the
// Markdown and TSV renderers, plus helpers for injecting generated text into
// existing Markdown files.
package report

import (
	"fmt"
	"strings"
	"time"
)

const (
	NoLogicMessage  = "No backend logic found in this file."
	NotFoundLabel   = "File not found:"
	truncatedFormat = "\n\n... (truncated %d characters)"
)

const infoTimeLayout = "2006-01-02 15:04:05"

type Document struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Version     string
	RunID       string
	ProjectRoot string
	Phases      []Phase
	Summary     Summary
}

type Phase struct {
	Number       int
	Title        string
	Description  string
	ExtractLogic bool
	Files        []FileSection
}

// Heading is the phase header line, e.g. "Phase 2: Backend Business Logic".
func (p Phase) Heading() string {
	return fmt.Sprintf("Phase %d: %s", p.Number, p.Title)
}

func (p Phase) Documented() int {
	n := 0
	for _, f := range p.Files {
		if f.Found {
			n++
		}
	}
	return n
}

type FileSection struct {
	Path           string
	Found          bool
	Size           int64
	ModTime        time.Time
	ReadError      string
	Overview       string
	Domain         string
	Technologies   []string
	Functions      []FunctionEntry
	Listing        string
	TruncatedChars int
	DroppedUnits   int
	Redactions     int
	Syntax         *SyntaxStatus
	MarkerAdded    bool
}

// Info renders the size/mtime line shown under a found file's header.
func (f FileSection) Info() string {
	return fmt.Sprintf("Size: %d bytes | Last Modified: %s", f.Size, f.ModTime.Format(infoTimeLayout))
}

// HasListing is false when the listing is blank, in which case the report
// prints NoLogicMessage instead of a code block.
func (f FileSection) HasListing() bool {
	return strings.TrimSpace(f.Listing) != ""
}

type FunctionEntry struct {
	Name         string
	Async        bool
	Params       []string
	Observations []string
	Explanation  string
	Code         string
	StartLine    int
	EndLine      int
}

type SyntaxStatus struct {
	Language     string
	Parsed       bool
	ErrorNodes   int
	MissingNodes int
	ErrorLines   []int
}

func (s SyntaxStatus) String() string {
	if !s.Parsed {
		return fmt.Sprintf("%s: parser produced no tree", s.Language)
	}
	if s.ErrorNodes == 0 && s.MissingNodes == 0 {
		return fmt.Sprintf("%s: parses cleanly", s.Language)
	}
	out := fmt.Sprintf("%s: %d error nodes, %d missing nodes", s.Language, s.ErrorNodes, s.MissingNodes)
	if len(s.ErrorLines) > 0 {
		lines := make([]string, 0, len(s.ErrorLines))
		for _, l := range s.ErrorLines {
			lines = append(lines, fmt.Sprint(l))
		}
		out += " (lines " + strings.Join(lines, ", ") + ")"
	}
	return out
}

type Summary struct {
	PhasesCompleted int
	TotalDocumented int
	TotalMissing    int
	UnitsExplained  int
	UnitsDropped    int
	MarkersAdded    int
	SecretsRedacted int
	Visited         []string
}

// TruncateListing cuts text to max characters and appends the truncation
// notice. It returns the number of characters removed.
func TruncateListing(text string, max int) (string, int) {
	if max <= 0 {
		return text, 0
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text, 0
	}
	removed := len(runes) - max
	return string(runes[:max]) + fmt.Sprintf(truncatedFormat, removed), removed
}

// Clip cuts text to max characters with no marker.
func Clip(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
