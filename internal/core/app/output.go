package app

import (
	"context"
	"fmt"
	"log/slog"

	"logicdoc/internal/core/config"
	"logicdoc/internal/core/ports"
	"logicdoc/internal/shared/observability"
	"logicdoc/internal/ui/report"
	"logicdoc/internal/ui/report/formats"
)

const (
	contentTypeMarkdown = "text/markdown; charset=utf-8"
	contentTypeTSV      = "text/tab-separated-values; charset=utf-8"
)

// writeOutputs renders the configured report files, refreshes injected
// Markdown summaries and publishes the artifacts. Report write failures are
// errors; injection and publish failures become warnings.
func (a *App) writeOutputs(ctx context.Context, doc report.Document, result *ports.GenerateResult) error {
	artifacts := make([]ports.Artifact, 0, 2)

	if path := a.Paths.MarkdownPath; path != "" {
		markdown, err := formats.NewMarkdownGenerator().Generate(doc, formats.MarkdownReportOptions{
			TableOfContents:     a.Config.Report.TOCEnabled(),
			CollapsibleSections: a.Config.Report.CollapsibleEnabled(),
		})
		if err != nil {
			return fmt.Errorf("generate Markdown report: %w", err)
		}
		if err := report.WriteFileAtomic(path, []byte(markdown)); err != nil {
			return fmt.Errorf("write Markdown report %q: %w", path, err)
		}
		result.Written = append(result.Written, path)
		artifacts = append(artifacts, ports.Artifact{Name: "documentation.md", Path: path, ContentType: contentTypeMarkdown})
	}

	if path := a.Paths.TSVPath; path != "" {
		tsv, err := formats.NewTSVGenerator().Generate(doc)
		if err != nil {
			return fmt.Errorf("generate TSV index: %w", err)
		}
		if err := report.WriteFileAtomic(path, []byte(tsv)); err != nil {
			return fmt.Errorf("write TSV index %q: %w", path, err)
		}
		result.Written = append(result.Written, path)
		artifacts = append(artifacts, ports.Artifact{Name: "functions.tsv", Path: path, ContentType: contentTypeTSV})
	}

	a.injectSummaries(doc, result)

	if a.publisher != nil && len(artifacts) > 0 {
		keys, err := a.publisher.Publish(ctx, doc.RunID, artifacts)
		result.Published = append(result.Published, keys...)
		observability.PublishedArtifactsTotal.Add(float64(len(keys)))
		if err != nil {
			slog.Warn("failed to publish report artifacts", "run_id", doc.RunID, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("publish: %v", err))
		}
	}
	return nil
}

func (a *App) injectSummaries(doc report.Document, result *ports.GenerateResult) {
	if len(a.Config.Report.UpdateMarkdown) == 0 {
		return
	}
	summary := formats.SummaryTable(doc.Summary)
	for _, target := range a.Config.Report.UpdateMarkdown {
		path := config.ResolveRelative(a.Paths.ProjectRoot, target.File)
		if err := report.InjectMarkdown(path, target.Marker, summary); err != nil {
			slog.Warn("failed to update markdown", "path", path, "marker", target.Marker, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("update %s: %v", target.File, err))
			continue
		}
		slog.Debug("updated markdown summary", "path", path, "marker", target.Marker)
	}
}
