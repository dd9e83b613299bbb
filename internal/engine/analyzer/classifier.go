package analyzer

import (
	"fmt"
	"regexp"
)

var (
	reImportLine = regexp.MustCompile(`(?m)^import `)
	reExportLine = regexp.MustCompile(`(?m)^export `)
	// Named declarations and arrow assignments are counted independently, so a
	// line may be counted more than once.
	reFunctionLike = regexp.MustCompile(`function\s+\w+|const\s+\w+\s*=\s*.*=>`)
)

// Classify guesses a file's architectural role from its path and counts its
// coarse structural elements. It always returns at least the counts line.
func Classify(path, text string) Classification {
	result := Classification{Path: path}

	for _, rule := range domainRules {
		if rule.match(path) {
			result.Observations = append(result.Observations, Observation{
				Kind:   KindDomain,
				Icon:   rule.icon,
				Label:  rule.label,
				Detail: rule.detail,
			})
			break
		}
	}

	result.Imports = len(reImportLine.FindAllStringIndex(text, -1))
	result.Exports = len(reExportLine.FindAllStringIndex(text, -1))
	result.Functions = len(reFunctionLike.FindAllStringIndex(text, -1))
	counts := fmt.Sprintf("Contains: %d imports, %d exports, ~%d functions/constants",
		result.Imports, result.Exports, result.Functions)
	result.Observations = append(result.Observations, Observation{Kind: KindCounts, Icon: "📦", Label: counts})

	for _, rule := range technologyRules {
		if rule.match(text) {
			result.Observations = append(result.Observations, Observation{
				Kind:  KindTechnology,
				Icon:  rule.icon,
				Label: rule.label,
			})
		}
	}

	return result
}
