package analyzer

import (
	"regexp"
	"strings"
)

var unitOpeners = []*regexp.Regexp{
	// export async function name(...) {
	regexp.MustCompile(`(export\s+)?(?:async\s+)?function\s+\w+\s*\([^)]*\)\s*\{`),
	// const name = async (...) =>
	regexp.MustCompile(`(export\s+)?const\s+\w+\s*=\s*(?:async\s+)?\([^)]*\)\s*=>`),
	// const name = function(...) {
	regexp.MustCompile(`(export\s+)?const\s+\w+\s*=\s*(?:async\s+)?function\s*\([^)]*\)\s*\{`),
}

// Span is a run of consecutive source lines. Unit spans hold one candidate
// unit; the others are lines the segmenter stepped over.
type Span struct {
	StartLine int
	Lines     []string
	Unit      bool
}

func opensUnit(line string) bool {
	for _, re := range unitOpeners {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// Spans walks text line by line and splits it into unit and skipped spans.
// Joining every span's lines in order gives back the input lines.
func Spans(text string) []Span {
	lines := strings.Split(text, "\n")
	var (
		spans   []Span
		skipped []string
		skipAt  int
	)
	flushSkipped := func() {
		if len(skipped) == 0 {
			return
		}
		spans = append(spans, Span{StartLine: skipAt + 1, Lines: skipped})
		skipped = nil
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		if !opensUnit(line) {
			if len(skipped) == 0 {
				skipAt = i
			}
			skipped = append(skipped, line)
			i++
			continue
		}

		flushSkipped()
		start := i
		unit := []string{line}
		balance := braceDelta(line)
		i++
		// Unbalanced units run to end of input and are kept as they are.
		for balance > 0 && i < len(lines) {
			unit = append(unit, lines[i])
			balance += braceDelta(lines[i])
			i++
		}
		spans = append(spans, Span{StartLine: start + 1, Lines: unit, Unit: true})
	}
	flushSkipped()
	return spans
}

// Segment returns the candidate function units of text in source order.
func Segment(text string) []CandidateUnit {
	var units []CandidateUnit
	for _, span := range Spans(text) {
		if !span.Unit {
			continue
		}
		units = append(units, CandidateUnit{
			StartLine: span.StartLine,
			EndLine:   span.StartLine + len(span.Lines) - 1,
			Text:      strings.Join(span.Lines, "\n"),
		})
	}
	return units
}
