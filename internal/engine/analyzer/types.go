package analyzer

import (
	"path/filepath"
	"strings"
)

// SourceFile is one file handed to the analyzer by the driver. The analyzer
// never mutates it.
type SourceFile struct {
	Path string
	Text string
	Ext  string
}

func NewSourceFile(path, text string) SourceFile {
	return SourceFile{
		Path: path,
		Text: text,
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
}

type ObservationKind string

const (
	KindDomain     ObservationKind = "domain"
	KindCounts     ObservationKind = "counts"
	KindTechnology ObservationKind = "technology"
)

type Observation struct {
	Kind   ObservationKind
	Icon   string
	Label  string
	Detail string
}

// Display renders the observation with the inline markup the report layer
// passes through untouched.
func (o Observation) Display() string {
	var b strings.Builder
	if o.Icon != "" {
		b.WriteString(o.Icon)
		b.WriteString(" ")
	}
	if o.Kind == KindDomain {
		b.WriteString("<b>")
		b.WriteString(o.Label)
		b.WriteString("</b>")
	} else {
		b.WriteString(o.Label)
	}
	if o.Detail != "" {
		b.WriteString(" - ")
		b.WriteString(o.Detail)
	}
	return b.String()
}

type Classification struct {
	Path         string
	Observations []Observation
	Imports      int
	Exports      int
	Functions    int
}

func (c Classification) Domain() (Observation, bool) {
	for _, obs := range c.Observations {
		if obs.Kind == KindDomain {
			return obs, true
		}
	}
	return Observation{}, false
}

func (c Classification) Technologies() []string {
	out := make([]string, 0, len(c.Observations))
	for _, obs := range c.Observations {
		if obs.Kind == KindTechnology {
			out = append(out, obs.Label)
		}
	}
	return out
}

func (c Classification) String() string {
	parts := make([]string, 0, len(c.Observations))
	for _, obs := range c.Observations {
		parts = append(parts, obs.Display())
	}
	return strings.Join(parts, lineBreak)
}

// CandidateUnit is a line span believed to hold one function definition.
// StartLine and EndLine are 1-based and inclusive.
type CandidateUnit struct {
	StartLine int
	EndLine   int
	Text      string
}

func (u CandidateUnit) LineCount() int {
	return u.EndLine - u.StartLine + 1
}

type UnitExplanation struct {
	Name         string
	Async        bool
	Params       []string
	Observations []string
	Excerpt      string
	StartLine    int
	EndLine      int
}

// Render builds the display block used by the report: a bold header followed
// by one bullet per fact.
func (e UnitExplanation) Render() string {
	lines := make([]string, 0, len(e.Observations)+3)
	lines = append(lines, "<b>Function: "+e.Name+"</b>")
	if e.Async {
		lines = append(lines, bullet+asyncObservation)
	}
	if len(e.Params) > 0 {
		lines = append(lines, bullet+"Parameters: "+strings.Join(e.Params, ", "))
	}
	for _, obs := range e.Observations {
		lines = append(lines, bullet+obs)
	}
	return strings.Join(lines, lineBreak) + lineBreak
}

type ExtractMode int

const (
	// ExtractFull keeps the whole file text as the listing.
	ExtractFull ExtractMode = iota
	// ExtractLogic runs the logic/rendering partitioner first.
	ExtractLogic
)

func (m ExtractMode) String() string {
	if m == ExtractLogic {
		return "logic"
	}
	return "full"
}

type FileAnalysis struct {
	File           SourceFile
	Mode           ExtractMode
	Classification Classification
	Listing        string
	Units          []CandidateUnit
	Explanations   []UnitExplanation
	DroppedUnits   int
}

const (
	lineBreak        = "<br/>"
	bullet           = "• "
	asyncObservation = "Asynchronous function (uses async/await)"
)
