package analyzer

import (
	"strings"
	"unicode/utf8"
)

const (
	RenderingPlaceholder = "// [JSX RENDERING CODE EXCLUDED]"
	MinimalLogicNotice   = "// Minimal business logic found - mostly presentational component"

	minimalLogicChars = 100
)

type scanState int

const (
	scanNormal scanState = iota
	// scanReturnExpr skips a multi-line `return (...)` expression.
	scanReturnExpr
	// scanMarkupBlock skips a run of element markup.
	scanMarkupBlock
)

func (s scanState) String() string {
	switch s {
	case scanReturnExpr:
		return "return-expr"
	case scanMarkupBlock:
		return "markup-block"
	default:
		return "normal"
	}
}

// LineDecision records what the partitioner did with one source line.
type LineDecision struct {
	Line   int
	State  string
	Kept   bool
	RuleID string
}

type partitioner struct {
	state  scanState
	parens int
	braces int
	out    []string
	trace  []LineDecision
}

// Partition keeps the logic lines of a file and drops rendering-only lines.
// Files whose extension cannot carry markup are returned unchanged.
func Partition(text, ext string) string {
	out, _ := PartitionTrace(text, ext)
	return out
}

// PartitionTrace is Partition plus the per-line decisions, in source order.
func PartitionTrace(text, ext string) (string, []LineDecision) {
	if !markupExtensions[strings.ToLower(ext)] {
		return text, nil
	}

	p := &partitioner{}
	for i, line := range strings.Split(text, "\n") {
		p.step(i+1, line)
	}

	extracted := strings.Join(p.out, "\n")
	if utf8.RuneCountInString(strings.TrimSpace(extracted)) < minimalLogicChars {
		return MinimalLogicNotice, p.trace
	}
	return extracted, p.trace
}

func (p *partitioner) step(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)

	switch p.state {
	case scanReturnExpr:
		p.parens += strings.Count(line, "(") - strings.Count(line, ")")
		if p.parens <= 0 {
			p.state = scanNormal
		}
		p.record(lineNo, scanReturnExpr, false, "")
		return
	case scanMarkupBlock:
		p.consumeMarkup(lineNo, line, trimmed)
		return
	}

	if strings.Contains(line, "return (") || strings.Contains(line, "return(") {
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		p.out = append(p.out, indent+RenderingPlaceholder)
		p.parens = strings.Count(line, "(") - strings.Count(line, ")")
		p.state = scanReturnExpr
		p.record(lineNo, scanNormal, true, "return-expr")
		return
	}

	if opensMarkup(trimmed) {
		p.state = scanMarkupBlock
		p.braces = 0
		p.consumeMarkup(lineNo, line, trimmed)
		return
	}

	if _, denied := firstMatch(dropRules, trimmed); denied {
		p.record(lineNo, scanNormal, false, "")
		return
	}
	if id, kept := firstMatch(keepRules, trimmed); kept {
		p.out = append(p.out, line)
		p.record(lineNo, scanNormal, true, id)
		return
	}
	p.record(lineNo, scanNormal, false, "")
}

func (p *partitioner) consumeMarkup(lineNo int, line, trimmed string) {
	p.braces += braceDelta(line)
	closes := strings.HasSuffix(trimmed, ">") || strings.HasSuffix(trimmed, "/>") || strings.HasSuffix(trimmed, "};")
	if closes && p.braces <= 0 {
		p.state = scanNormal
	}
	p.record(lineNo, scanMarkupBlock, false, "")
}

func (p *partitioner) record(lineNo int, state scanState, kept bool, ruleID string) {
	p.trace = append(p.trace, LineDecision{Line: lineNo, State: state.String(), Kept: kept, RuleID: ruleID})
}

func opensMarkup(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "</") || !strings.Contains(trimmed, ">") {
		return false
	}
	return containsAnyOf(trimmed, markupTags...)
}
