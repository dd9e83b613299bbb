package ports

import (
	"context"
	"time"

	"logicdoc/internal/data/history"
	"logicdoc/internal/engine/redact"
	"logicdoc/internal/engine/syntax"
)

// SyntaxChecker abstracts the optional parse-health pass over documented files.
type SyntaxChecker interface {
	Supports(path string) bool
	Check(ctx context.Context, path string, content []byte) (syntax.Health, error)
}

// Redactor masks credential-like values in text copied into the report.
type Redactor interface {
	Redact(text string) (string, []redact.Finding)
}

// RunRecorder abstracts run persistence for history and trend workflows.
type RunRecorder interface {
	RecordRun(ctx context.Context, run history.Run) (string, error)
	RecentRuns(ctx context.Context, since time.Time) ([]history.Run, error)
	Trend(ctx context.Context, since time.Time, window time.Duration) (history.TrendReport, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Artifact is one generated output file offered to a Publisher.
type Artifact struct {
	Name        string
	Path        string
	ContentType string
}

// Publisher uploads generated artifacts for a run and returns their remote keys.
type Publisher interface {
	Publish(ctx context.Context, runID string, artifacts []Artifact) ([]string, error)
}

type EnqueueResult string

const (
	EnqueueAccepted EnqueueResult = "accepted"
	EnqueueDropped  EnqueueResult = "dropped"
)

// RunQueuePort buffers run records between generation and persistence.
type RunQueuePort interface {
	Enqueue(run history.Run) EnqueueResult
	DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]history.Run, error)
	Close() error
}

// GenerateRequest narrows or alters one documentation run.
type GenerateRequest struct {
	// Phases limits the run to these phase numbers; empty means all.
	Phases        []int
	DryRunMarkers bool
	SkipMarkers   bool
	Trigger       string
}

// PhaseResult summarizes one phase of a completed run.
type PhaseResult struct {
	Number     int
	Title      string
	Documented int
	Missing    int
}

// GenerateResult summarizes a completed documentation run.
type GenerateResult struct {
	RunID           string
	StartedAt       time.Time
	Duration        time.Duration
	Phases          []PhaseResult
	FilesDocumented int
	FilesMissing    int
	UnitsExplained  int
	UnitsDropped    int
	MarkersAdded    int
	SecretsRedacted int
	MarkerDiffs     []string
	Written         []string
	Published       []string
	Warnings        []string
}

// DocumentationService is the driving port used by the CLI and UI adapters.
type DocumentationService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	Trend(ctx context.Context, since time.Time, window time.Duration) (history.TrendReport, error)
}
