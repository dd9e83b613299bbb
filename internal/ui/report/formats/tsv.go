package formats

import (
	"fmt"
	"strings"

	"logicdoc/internal/ui/report"
)

// TSVGenerator renders a function index: one row per explained function,
// plus one row per file with no explained functions.
type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

func (t *TSVGenerator) Generate(doc report.Document) (string, error) {
	var buf strings.Builder

	buf.WriteString("Phase\tFile\tStatus\tDomain\tFunction\tAsync\tParams\tObservations\tStartLine\tEndLine\n")
	for _, phase := range doc.Phases {
		for _, file := range phase.Files {
			if !file.Found {
				buf.WriteString(fmt.Sprintf("%d\t%s\tnot_found\t\t\t\t\t0\t0\t0\n", phase.Number, tsvField(file.Path)))
				continue
			}
			if len(file.Functions) == 0 {
				buf.WriteString(fmt.Sprintf("%d\t%s\tdocumented\t%s\t\t\t\t0\t0\t0\n",
					phase.Number, tsvField(file.Path), tsvField(file.Domain)))
				continue
			}
			for _, fn := range file.Functions {
				buf.WriteString(fmt.Sprintf("%d\t%s\tdocumented\t%s\t%s\t%t\t%s\t%d\t%d\t%d\n",
					phase.Number,
					tsvField(file.Path),
					tsvField(file.Domain),
					tsvField(fn.Name),
					fn.Async,
					tsvField(strings.Join(fn.Params, ", ")),
					len(fn.Observations),
					fn.StartLine,
					fn.EndLine,
				))
			}
		}
	}

	return buf.String(), nil
}
