package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"logicdoc/internal/core/ports"
	"logicdoc/internal/ui/report"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// printSummary writes the end-of-run summary: per-phase counts, totals,
// written and published outputs, marker diffs and warnings.
func printSummary(w io.Writer, res ports.GenerateResult, doc report.Document) {
	fmt.Fprintln(w, titleStyle.Render("Documentation generated"))
	fmt.Fprintln(w, statusStyle.Render(fmt.Sprintf("run %s in %s", res.RunID, res.Duration.Round(time.Millisecond))))

	for _, phase := range res.Phases {
		line := fmt.Sprintf("  Phase %d: %s  %d documented", phase.Number, phase.Title, phase.Documented)
		if phase.Missing > 0 {
			line += "  " + missingStyle.Render(fmt.Sprintf("%d missing", phase.Missing))
		}
		fmt.Fprintln(w, line)
	}

	totals := fmt.Sprintf("Phases: %d | Files documented: %d | Units explained: %d | Markers added: %d",
		doc.Summary.PhasesCompleted, res.FilesDocumented, res.UnitsExplained, res.MarkersAdded)
	if res.FilesMissing == 0 {
		fmt.Fprintln(w, successStyle.Render(totals))
	} else {
		fmt.Fprintln(w, totals+" | "+missingStyle.Render(fmt.Sprintf("Missing: %d", res.FilesMissing)))
	}
	if res.UnitsDropped > 0 {
		fmt.Fprintln(w, statusStyle.Render(fmt.Sprintf("%d candidate units had no extractable name", res.UnitsDropped)))
	}

	for _, path := range res.Written {
		fmt.Fprintf(w, "  wrote %s\n", path)
	}
	for _, key := range res.Published {
		fmt.Fprintf(w, "  published %s\n", key)
	}
	for _, diff := range res.MarkerDiffs {
		fmt.Fprintln(w, strings.TrimRight(diff, "\n"))
	}
	for _, warning := range res.Warnings {
		fmt.Fprintln(w, warningStyle.Render("warning: "+warning))
	}
}
