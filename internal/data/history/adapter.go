package history

import (
	"context"
	"time"
)

// Adapter bridges Store to the core RunRecorder port and scopes it to one
// project key.
type Adapter struct {
	store      *Store
	projectKey string
}

func NewAdapter(store *Store, projectKey string) *Adapter {
	return &Adapter{store: store, projectKey: normalizeProjectKey(projectKey)}
}

func (a *Adapter) RecordRun(ctx context.Context, run Run) (string, error) {
	run.ProjectKey = a.projectKey
	return a.store.SaveRun(ctx, run)
}

func (a *Adapter) RecentRuns(ctx context.Context, since time.Time) ([]Run, error) {
	return a.store.LoadRuns(ctx, a.projectKey, since)
}

func (a *Adapter) Trend(ctx context.Context, since time.Time, window time.Duration) (TrendReport, error) {
	runs, err := a.RecentRuns(ctx, since)
	if err != nil {
		return TrendReport{}, err
	}
	return BuildTrendReport(a.projectKey, runs, window)
}

// Prune deletes this project's runs that started before cutoff.
func (a *Adapter) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.store.PruneBefore(ctx, a.projectKey, cutoff)
}

func (a *Adapter) Close() error {
	return a.store.Close()
}
