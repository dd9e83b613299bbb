package analyzer

import (
	"regexp"
	"strings"
)

const excerptLimit = 500

var (
	reFunctionName = regexp.MustCompile(`function\s+(\w+)`)
	reConstName    = regexp.MustCompile(`const\s+(\w+)`)
	reExportName   = regexp.MustCompile(`export\s+(?:const|function)\s+(\w+)`)
	reParamList    = regexp.MustCompile(`\(([^)]*)\)`)
)

// Explain describes one candidate unit. The second result is false when no
// name can be extracted; such units are dropped by the caller.
func Explain(unit CandidateUnit) (UnitExplanation, bool) {
	firstLine := firstLineOf(unit.Text)

	name := extractName(firstLine, unit.Text)
	if name == "" {
		return UnitExplanation{}, false
	}

	subject := unitSubject{
		name:  name,
		text:  unit.Text,
		lower: strings.ToLower(unit.Text),
	}
	observations := make([]string, 0, len(observationRules))
	for _, rule := range observationRules {
		if rule.match(subject) {
			observations = append(observations, rule.text)
		}
	}

	return UnitExplanation{
		Name:         name,
		Async:        strings.Contains(firstLine, "async"),
		Params:       extractParams(firstLine),
		Observations: observations,
		Excerpt:      Excerpt(unit.Text, excerptLimit),
		StartLine:    unit.StartLine,
		EndLine:      unit.EndLine,
	}, true
}

// ExplainAll explains units in order and reports how many were dropped for
// lack of a name.
func ExplainAll(units []CandidateUnit) ([]UnitExplanation, int) {
	out := make([]UnitExplanation, 0, len(units))
	dropped := 0
	for _, unit := range units {
		explanation, ok := Explain(unit)
		if !ok {
			dropped++
			continue
		}
		out = append(out, explanation)
	}
	return out, dropped
}

func firstLineOf(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func extractName(firstLine, text string) string {
	var m []string
	switch {
	case strings.Contains(firstLine, "function"):
		m = reFunctionName.FindStringSubmatch(firstLine)
	case strings.Contains(firstLine, "const") && strings.Contains(text, "=>"):
		m = reConstName.FindStringSubmatch(firstLine)
	case strings.Contains(firstLine, "export"):
		m = reExportName.FindStringSubmatch(firstLine)
	}
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func extractParams(firstLine string) []string {
	m := reParamList.FindStringSubmatch(firstLine)
	if len(m) < 2 {
		return nil
	}
	raw := strings.TrimSpace(m[1])
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	params := make([]string, 0, len(parts))
	for _, part := range parts {
		name, _, _ := strings.Cut(strings.TrimSpace(part), ":")
		params = append(params, strings.TrimSpace(name))
	}
	return params
}

// Excerpt cuts text to limit characters and appends an ellipsis when
// anything was removed.
func Excerpt(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
