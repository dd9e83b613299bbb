package history

import "time"

const SchemaVersion = 1

// Run is one completed documentation pass.
type Run struct {
	ID              string    `json:"id"`
	ProjectKey      string    `json:"project_key"`
	SchemaVersion   int       `json:"schema_version"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	PhaseCount      int       `json:"phase_count"`
	FilesDocumented int       `json:"files_documented"`
	FilesMissing    int       `json:"files_missing"`
	UnitsExplained  int       `json:"units_explained"`
	UnitsDropped    int       `json:"units_dropped"`
	MarkersAdded    int       `json:"markers_added"`
	Files           []RunFile `json:"files,omitempty"`
}

// RunFile is the per-file outcome inside a Run.
type RunFile struct {
	Path         string `json:"path"`
	Phase        int    `json:"phase"`
	Found        bool   `json:"found"`
	Domain       string `json:"domain,omitempty"`
	Functions    int    `json:"functions"`
	DroppedUnits int    `json:"dropped_units"`
	ListingChars int    `json:"listing_chars"`
	SyntaxErrors int    `json:"syntax_errors"`
}

type TrendPoint struct {
	RunID           string    `json:"run_id"`
	Timestamp       time.Time `json:"timestamp"`
	FilesDocumented int       `json:"files_documented"`
	FilesMissing    int       `json:"files_missing"`
	UnitsExplained  int       `json:"units_explained"`
	UnitsDropped    int       `json:"units_dropped"`
	DeltaDocumented int       `json:"delta_documented"`
	DeltaMissing    int       `json:"delta_missing"`
	DeltaExplained  int       `json:"delta_explained"`
	DropRatePct     float64   `json:"drop_rate_pct"`
	AvgExplained    float64   `json:"avg_explained"`
	WindowHours     float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	ProjectKey    string       `json:"project_key"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}
