package formats

import (
	"fmt"
	"strings"
	"time"

	"logicdoc/internal/ui/report"
)

const summaryHeading = "Documentation Summary"

type MarkdownReportOptions struct {
	TableOfContents     bool
	CollapsibleSections bool
	// CollapseAfterLines folds listings longer than this into <details>.
	CollapseAfterLines int
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(doc report.Document, opts MarkdownReportOptions) (string, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now().UTC()
	}
	if opts.CollapseAfterLines <= 0 {
		opts.CollapseAfterLines = 60
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + nonEmpty(doc.Title, "Backend Code Documentation") + "\n")
	b.WriteString("generated_at: " + doc.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(doc.Version, "unknown") + "\n")
	if doc.RunID != "" {
		b.WriteString("run_id: " + doc.RunID + "\n")
	}
	b.WriteString("---\n\n")

	b.WriteString("# " + nonEmpty(doc.Title, "Backend Code Documentation") + "\n\n")
	if strings.TrimSpace(doc.Subtitle) != "" {
		b.WriteString("_" + doc.Subtitle + "_\n\n")
	}
	b.WriteString("Generated: " + doc.GeneratedAt.Format("January 02, 2006 at 03:04 PM") + "\n\n")

	headings := make([]string, 0, len(doc.Phases)+1)
	for _, phase := range doc.Phases {
		headings = append(headings, phase.Heading())
	}
	headings = append(headings, summaryHeading)
	anchors := makeAnchors(headings)

	if opts.TableOfContents {
		b.WriteString("## Table of Contents\n")
		for i, h := range headings {
			b.WriteString(fmt.Sprintf("- [%s](#%s)\n", h, anchors[i]))
		}
		b.WriteString("\n")
	}

	for _, phase := range doc.Phases {
		m.writePhase(&b, phase, opts)
	}
	m.writeSummary(&b, doc.Summary)

	return b.String(), nil
}

func (m *MarkdownGenerator) writePhase(b *strings.Builder, phase report.Phase, opts MarkdownReportOptions) {
	b.WriteString("## " + phase.Heading() + "\n\n")
	if strings.TrimSpace(phase.Description) != "" {
		b.WriteString(phase.Description + "\n\n")
	}
	for _, file := range phase.Files {
		if !file.Found {
			b.WriteString(fmt.Sprintf("**%s** %s\n\n", report.NotFoundLabel, file.Path))
			continue
		}
		m.writeFile(b, file, opts)
	}
}

func (m *MarkdownGenerator) writeFile(b *strings.Builder, file report.FileSection, opts MarkdownReportOptions) {
	b.WriteString("### 📄 File: " + file.Path + "\n\n")
	b.WriteString(file.Info() + "\n\n")

	if file.Overview != "" {
		b.WriteString("**📋 File Overview:**<br/>" + file.Overview + "\n\n")
	}
	if file.Syntax != nil {
		b.WriteString("Syntax: `" + file.Syntax.String() + "`\n\n")
	}
	if file.Redactions > 0 {
		b.WriteString(fmt.Sprintf("_%d credential-like values redacted._\n\n", file.Redactions))
	}

	lang := languageTag(file.Path)
	if len(file.Functions) > 0 {
		b.WriteString("#### 🔍 Functions & Logic Analysis\n\n")
		for _, fn := range file.Functions {
			b.WriteString(fn.Explanation + "\n\n")
			writeCodeBlock(b, lang, fn.Code)
		}
	}

	if !file.HasListing() {
		b.WriteString("_" + report.NoLogicMessage + "_\n\n")
		return
	}

	b.WriteString("#### 📝 Complete Code\n\n")
	collapse := opts.CollapsibleSections && lineCount(file.Listing) > opts.CollapseAfterLines
	if collapse {
		b.WriteString(fmt.Sprintf("<details>\n<summary>%s (%d lines)</summary>\n\n", file.Path, lineCount(file.Listing)))
	}
	writeCodeBlock(b, lang, file.Listing)
	if collapse {
		b.WriteString("</details>\n\n")
	}
}

func (m *MarkdownGenerator) writeSummary(b *strings.Builder, s report.Summary) {
	b.WriteString("## " + summaryHeading + "\n\n")
	b.WriteString(SummaryTable(s))
	b.WriteString("\n")

	if len(s.Visited) == 0 {
		return
	}
	b.WriteString("### Files Documented\n\n")
	for i, path := range s.Visited {
		b.WriteString(fmt.Sprintf("%d. `%s`\n", i+1, path))
	}
	b.WriteString("\n")
}

// SummaryTable renders the run summary as a Markdown table. It is also the
// body injected into configured update_markdown targets.
func SummaryTable(s report.Summary) string {
	var b strings.Builder
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Phases Completed | %d |\n", s.PhasesCompleted))
	b.WriteString(fmt.Sprintf("| Total Files Documented | %d |\n", s.TotalDocumented))
	b.WriteString(fmt.Sprintf("| Files Not Found | %d |\n", s.TotalMissing))
	b.WriteString(fmt.Sprintf("| Functions Explained | %d |\n", s.UnitsExplained))
	b.WriteString(fmt.Sprintf("| Unnamed Units Skipped | %d |\n", s.UnitsDropped))
	b.WriteString(fmt.Sprintf("| Markers Added | %d |\n", s.MarkersAdded))
	if s.SecretsRedacted > 0 {
		b.WriteString(fmt.Sprintf("| Secrets Redacted | %d |\n", s.SecretsRedacted))
	}
	return b.String()
}

func writeCodeBlock(b *strings.Builder, lang, code string) {
	fence := fenceFor(code)
	b.WriteString(fence + lang + "\n")
	b.WriteString(strings.TrimRight(code, "\n"))
	b.WriteString("\n" + fence + "\n\n")
}
