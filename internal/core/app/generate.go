package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"logicdoc/internal/core/config"
	"logicdoc/internal/core/errors"
	"logicdoc/internal/core/ports"
	"logicdoc/internal/data/history"
	"logicdoc/internal/engine/analyzer"
	"logicdoc/internal/engine/redact"
	"logicdoc/internal/shared/observability"
	"logicdoc/internal/shared/version"
	"logicdoc/internal/ui/report"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Generate runs one documentation pass over the selected phases, writes the
// configured outputs and hands the run record to the history worker. Runs are
// serialized. Failed runs are counted by error code.
func (a *App) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, report.Document, error) {
	result, doc, err := a.generate(ctx, req)
	if err != nil {
		observability.RunFailuresTotal.WithLabelValues(string(errors.CodeOf(err))).Inc()
	}
	return result, doc, err
}

func (a *App) generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, report.Document, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	ctx, span := observability.Tracer.Start(ctx, "app.Generate", trace.WithAttributes(
		attribute.String("trigger", req.Trigger),
		attribute.Bool("dry_run_markers", req.DryRunMarkers),
	))
	defer span.End()

	phases, err := a.selectPhases(req.Phases)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ports.GenerateResult{}, report.Document{}, err
	}

	started := a.now()
	runID := uuid.NewString()
	span.SetAttributes(attribute.String("run_id", runID))

	doc := report.Document{
		Title:       a.Config.Report.Title,
		Subtitle:    a.Config.Report.Subtitle,
		GeneratedAt: started,
		Version:     version.Version,
		RunID:       runID,
		ProjectRoot: a.Paths.ProjectRoot,
	}
	result := ports.GenerateResult{RunID: runID, StartedAt: started}
	run := history.Run{ID: runID, StartedAt: started.UTC(), PhaseCount: len(phases)}
	markers := a.markerWriterFor(req)

	slog.Info("starting documentation run", "run_id", runID, "phases", len(phases), "trigger", req.Trigger)
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return ports.GenerateResult{}, report.Document{}, err
		}

		section, phaseResult, files, err := a.documentPhase(ctx, phase, markers, &result)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return ports.GenerateResult{}, report.Document{}, errors.AddContext(err, errors.CtxPhase, phase.Number)
		}
		doc.Phases = append(doc.Phases, section)
		result.Phases = append(result.Phases, phaseResult)
		run.Files = append(run.Files, files...)
	}

	doc.Summary = report.Summary{
		PhasesCompleted: len(doc.Phases),
		TotalDocumented: result.FilesDocumented,
		TotalMissing:    result.FilesMissing,
		UnitsExplained:  result.UnitsExplained,
		UnitsDropped:    result.UnitsDropped,
		MarkersAdded:    result.MarkersAdded,
		SecretsRedacted: result.SecretsRedacted,
	}
	for _, phase := range doc.Phases {
		for _, file := range phase.Files {
			if file.Found {
				doc.Summary.Visited = append(doc.Summary.Visited, file.Path)
			}
		}
	}

	if err := a.writeOutputs(ctx, doc, &result); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ports.GenerateResult{}, report.Document{}, errors.AddContext(err, errors.CtxRunID, runID)
	}

	finished := a.now()
	result.Duration = finished.Sub(started)
	observability.RunDuration.Observe(result.Duration.Seconds())

	run.FinishedAt = finished.UTC()
	run.FilesDocumented = result.FilesDocumented
	run.FilesMissing = result.FilesMissing
	run.UnitsExplained = result.UnitsExplained
	run.UnitsDropped = result.UnitsDropped
	run.MarkersAdded = result.MarkersAdded
	a.recordRun(run)

	slog.Info("documentation run complete",
		"run_id", runID,
		"phases", phaseList(result.Phases),
		"documented", result.FilesDocumented,
		"missing", result.FilesMissing,
		"explained", result.UnitsExplained,
		"duration", result.Duration,
	)
	a.emitUpdate(Update{Result: result, Document: doc})
	return result, doc, nil
}

// selectPhases returns the configured phases in order, narrowed to numbers
// when given. Unknown numbers are a validation error.
func (a *App) selectPhases(numbers []int) ([]config.Phase, error) {
	if len(numbers) == 0 {
		return a.Config.Phases, nil
	}
	wanted := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if _, ok := a.Config.PhaseByNumber(n); !ok {
			return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown phase %d", n))
		}
		wanted[n] = true
	}
	out := make([]config.Phase, 0, len(wanted))
	for _, phase := range a.Config.Phases {
		if wanted[phase.Number] {
			out = append(out, phase)
		}
	}
	return out, nil
}

func (a *App) markerWriterFor(req ports.GenerateRequest) *markerWriter {
	if req.SkipMarkers || !a.Config.MarkersEnabled() {
		return nil
	}
	return &markerWriter{
		template: a.Config.Marker.Template,
		dryRun:   req.DryRunMarkers || a.Config.Marker.DryRun,
		afterWrite: func(path string) {
			if w := a.currentWatcher(); w != nil {
				w.Prime(path)
			}
		},
	}
}

func (a *App) documentPhase(ctx context.Context, phase config.Phase, markers *markerWriter, result *ports.GenerateResult) (report.Phase, ports.PhaseResult, []history.RunFile, error) {
	slog.Info("starting phase", "phase", phase.Number, "title", phase.Title, "files", len(phase.Files))

	section := report.Phase{
		Number:       phase.Number,
		Title:        phase.Title,
		Description:  phase.Description,
		ExtractLogic: phase.ExtractLogic,
	}
	phaseResult := ports.PhaseResult{Number: phase.Number, Title: phase.Title}
	files := make([]history.RunFile, 0, len(phase.Files))

	for _, rel := range phase.Files {
		if err := ctx.Err(); err != nil {
			return report.Phase{}, ports.PhaseResult{}, nil, err
		}
		if a.sources.Excluded(rel) {
			slog.Debug("skipping excluded file", "path", rel, "phase", phase.Number)
			continue
		}

		file, diff, err := a.documentFile(ctx, phase, rel, markers)
		if err != nil {
			return report.Phase{}, ports.PhaseResult{}, nil, err
		}
		section.Files = append(section.Files, file)
		files = append(files, runFileFor(phase.Number, file))

		if !file.Found {
			phaseResult.Missing++
			result.FilesMissing++
			continue
		}
		phaseResult.Documented++
		result.FilesDocumented++
		result.UnitsExplained += len(file.Functions)
		result.UnitsDropped += file.DroppedUnits
		result.SecretsRedacted += file.Redactions
		if file.MarkerAdded {
			result.MarkersAdded++
		}
		if diff != "" {
			result.MarkerDiffs = append(result.MarkerDiffs, diff)
		}
		if file.ReadError != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("read %s: %s", rel, file.ReadError))
		}
	}
	return section, phaseResult, files, nil
}

func (a *App) documentFile(ctx context.Context, phase config.Phase, rel string, markers *markerWriter) (report.FileSection, string, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.documentFile", trace.WithAttributes(
		attribute.String("path", rel),
		attribute.Int("phase", phase.Number),
	))
	defer span.End()

	phaseLabel := strconv.Itoa(phase.Number)
	src, err := a.sources.Read(rel)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			slog.Warn("file not found", "path", rel, "phase", phase.Number)
			observability.FilesProcessedTotal.WithLabelValues(phaseLabel, "not_found").Inc()
			span.SetAttributes(attribute.Bool("found", false))
			return report.FileSection{Path: rel}, "", nil
		}
		return report.FileSection{}, "", err
	}
	slog.Info("processing file", "path", rel, "phase", phase.Number)

	mode := analyzer.ExtractFull
	if phase.ExtractLogic {
		mode = analyzer.ExtractLogic
	}
	began := time.Now()
	fa := a.analyzer.Analyze(analyzer.NewSourceFile(rel, src.Text), mode)
	observability.AnalysisDuration.WithLabelValues(phaseLabel).Observe(time.Since(began).Seconds())
	if mode == analyzer.ExtractLogic {
		countPartition(src.Text, fa.File.Ext)
	}

	section := report.FileSection{
		Path:         rel,
		Found:        true,
		Size:         src.Size,
		ModTime:      src.ModTime,
		ReadError:    src.ReadErr,
		Overview:     fa.Classification.String(),
		Technologies: fa.Classification.Technologies(),
		DroppedUnits: fa.DroppedUnits,
	}
	if domain, ok := fa.Classification.Domain(); ok {
		section.Domain = domain.Label
	}

	listing := fa.Listing
	redacted := make(map[string]bool)
	scrub := func(text string) string {
		if a.redactor == nil || text == "" {
			return text
		}
		out, findings := a.redactor.Redact(text)
		for _, f := range findings {
			if !redacted[f.Value] {
				redacted[f.Value] = true
				observability.SecretsRedactedTotal.WithLabelValues(f.Kind).Inc()
				slog.Warn("redacted credential-like value", "path", rel, "kind", f.Kind, "line", f.Line, "value", redact.Mask(f.Value))
			}
		}
		return out
	}

	explanations := fa.Explanations
	if limit := a.Config.Report.MaxFunctions; limit > 0 && len(explanations) > limit {
		explanations = explanations[:limit]
	}
	for _, e := range explanations {
		section.Functions = append(section.Functions, report.FunctionEntry{
			Name:         e.Name,
			Async:        e.Async,
			Params:       e.Params,
			Observations: e.Observations,
			Explanation:  e.Render(),
			Code:         report.Clip(scrub(e.Excerpt), a.Config.Report.MaxExcerptChars),
			StartLine:    e.StartLine,
			EndLine:      e.EndLine,
		})
	}
	section.Listing, section.TruncatedChars = report.TruncateListing(scrub(listing), a.Config.Report.MaxListingChars)
	section.Redactions = len(redacted)

	observability.UnitsExplainedTotal.Add(float64(len(section.Functions)))
	observability.UnitsDroppedTotal.Add(float64(fa.DroppedUnits))
	observability.FilesProcessedTotal.WithLabelValues(phaseLabel, "documented").Inc()

	if src.ReadErr == "" {
		section.Syntax = a.checkSyntax(ctx, src)
	}

	var diff string
	if markers != nil && src.ReadErr == "" {
		outcome, err := markers.Apply(src, phase.Number)
		if err != nil {
			slog.Warn("failed to add documentation marker", "path", rel, "error", err)
		} else {
			section.MarkerAdded = outcome.Added
			diff = outcome.Diff
		}
	}

	span.SetAttributes(
		attribute.Bool("found", true),
		attribute.Int("functions", len(section.Functions)),
		attribute.Int("dropped_units", fa.DroppedUnits),
	)
	return section, diff, nil
}

func (a *App) checkSyntax(ctx context.Context, src source) *report.SyntaxStatus {
	if a.syntax == nil || !a.syntax.Supports(src.Rel) {
		return nil
	}
	health, err := a.syntax.Check(ctx, src.Rel, []byte(src.Text))
	if err != nil {
		slog.Debug("syntax check failed", "path", src.Rel, "error", err)
		return nil
	}
	observability.SyntaxErrorNodesTotal.Add(float64(health.ErrorNodes + health.MissingNodes))
	return &report.SyntaxStatus{
		Language:     health.Language,
		Parsed:       health.Parsed,
		ErrorNodes:   health.ErrorNodes,
		MissingNodes: health.MissingNodes,
		ErrorLines:   health.FirstErrorLines,
	}
}

func countPartition(text, ext string) {
	_, decisions := analyzer.PartitionTrace(text, ext)
	kept := 0
	for _, d := range decisions {
		if d.Kept {
			kept++
		}
	}
	observability.PartitionLinesTotal.WithLabelValues("kept").Add(float64(kept))
	observability.PartitionLinesTotal.WithLabelValues("dropped").Add(float64(len(decisions) - kept))
}

func runFileFor(phase int, file report.FileSection) history.RunFile {
	rf := history.RunFile{
		Path:         filepath.ToSlash(file.Path),
		Phase:        phase,
		Found:        file.Found,
		Domain:       file.Domain,
		Functions:    len(file.Functions),
		DroppedUnits: file.DroppedUnits,
		ListingChars: len([]rune(file.Listing)),
	}
	if file.Syntax != nil {
		rf.SyntaxErrors = file.Syntax.ErrorNodes + file.Syntax.MissingNodes
	}
	return rf
}

// phaseList renders phase numbers for log lines, e.g. "1,2,4".
func phaseList(phases []ports.PhaseResult) string {
	parts := make([]string, 0, len(phases))
	for _, p := range phases {
		parts = append(parts, strconv.Itoa(p.Number))
	}
	return strings.Join(parts, ",")
}
