package cli

import (
	"fmt"
	"strings"

	"logicdoc/internal/data/history"
)

const maxPreviewLines = 12

func renderHelp(m model) string {
	keys := "Keys: / filter | enter details | t trend overlay | q quit"
	if m.showDetails {
		keys = "Keys: j/k function cursor | o open source | esc back | t trend overlay | q quit"
	}
	return statusStyle.Render(keys)
}

func renderDetails(m model) string {
	entry := m.selected
	s := entry.section
	lines := []string{
		titleStyle.Render(s.Path),
		statusStyle.Render(entry.heading),
	}
	if !s.Found {
		lines = append(lines, missingStyle.Render("File not found."), "  Press esc to go back.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "  "+s.Info())
	if s.ReadError != "" {
		lines = append(lines, missingStyle.Render("  "+s.ReadError))
	}
	if s.Overview != "" {
		lines = append(lines, "", s.Overview)
	}
	if s.Syntax != nil {
		lines = append(lines, statusStyle.Render("  Syntax: "+s.Syntax.String()))
	}

	lines = append(lines, "", fmt.Sprintf("Functions (%d):", len(s.Functions)))
	for i, fn := range s.Functions {
		prefix := "   "
		if i == m.selectedFunc {
			prefix = " ->"
		}
		name := fn.Name
		if fn.Async {
			name = "async " + name
		}
		lines = append(lines, fmt.Sprintf("%s %s(%s) lines %d-%d", prefix, name, strings.Join(fn.Params, ", "), fn.StartLine, fn.EndLine))
	}
	if len(s.Functions) == 0 {
		lines = append(lines, "   none")
	} else {
		lines = append(lines, "", renderFunction(m))
	}
	if s.DroppedUnits > 0 {
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  %d unnamed units skipped", s.DroppedUnits)))
	}
	return strings.Join(lines, "\n")
}

func renderFunction(m model) string {
	fns := m.selected.section.Functions
	idx := m.selectedFunc
	if idx < 0 || idx >= len(fns) {
		return ""
	}
	fn := fns[idx]
	out := []string{warningStyle.Render(fn.Name)}
	if fn.Explanation != "" {
		out = append(out, fn.Explanation)
	}
	if code := strings.TrimSpace(fn.Code); code != "" {
		codeLines := strings.Split(code, "\n")
		if len(codeLines) > maxPreviewLines {
			codeLines = append(codeLines[:maxPreviewLines], "...")
		}
		for _, l := range codeLines {
			out = append(out, "    "+l)
		}
	}
	return strings.Join(out, "\n")
}

func renderTrendOverlay(report *history.TrendReport) string {
	if report == nil || len(report.Points) == 0 {
		return statusStyle.Render("Trend overlay unavailable (run with --history and [db].enabled = true).")
	}
	last := report.Points[len(report.Points)-1]
	return strings.Join([]string{
		"Trend Overlay",
		fmt.Sprintf("  Window: %s | Runs: %d", report.Window, report.RunCount),
		fmt.Sprintf("  Files documented: %d (%+d) | missing: %d (%+d)", last.FilesDocumented, last.DeltaDocumented, last.FilesMissing, last.DeltaMissing),
		fmt.Sprintf("  Units explained: %d (%+d, avg %.2f)", last.UnitsExplained, last.DeltaExplained, last.AvgExplained),
		fmt.Sprintf("  Drop rate: %.2f%%", last.DropRatePct),
	}, "\n")
}
