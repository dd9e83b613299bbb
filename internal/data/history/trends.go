package history

import (
	"errors"
	"math"
	"time"
)

// ErrNoRuns is returned when a trend is requested over an empty run set.
var ErrNoRuns = errors.New("no runs available")

// BuildTrendReport turns runs (oldest first) into per-run deltas plus a
// moving average of explained units over window.
func BuildTrendReport(projectKey string, runs []Run, window time.Duration) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, ErrNoRuns
	}

	points := make([]TrendPoint, 0, len(runs))
	for i, current := range runs {
		point := TrendPoint{
			RunID:           current.ID,
			Timestamp:       current.StartedAt,
			FilesDocumented: current.FilesDocumented,
			FilesMissing:    current.FilesMissing,
			UnitsExplained:  current.UnitsExplained,
			UnitsDropped:    current.UnitsDropped,
		}
		if total := current.UnitsExplained + current.UnitsDropped; total > 0 {
			point.DropRatePct = round2(float64(current.UnitsDropped) / float64(total) * 100)
		}

		if i > 0 {
			prev := runs[i-1]
			point.DeltaDocumented = current.FilesDocumented - prev.FilesDocumented
			point.DeltaMissing = current.FilesMissing - prev.FilesMissing
			point.DeltaExplained = current.UnitsExplained - prev.UnitsExplained
		}

		point.AvgExplained = round2(movingAverage(runs, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    normalizeProjectKey(projectKey),
		Since:         runs[0].StartedAt,
		Until:         runs[len(runs)-1].StartedAt,
		Window:        window.String(),
		RunCount:      len(points),
		Points:        points,
	}, nil
}

func movingAverage(runs []Run, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(runs[index].UnitsExplained)
	}

	cutoff := runs[index].StartedAt.Add(-window)
	total, count := 0, 0
	for i := index; i >= 0; i-- {
		if runs[i].StartedAt.Before(cutoff) {
			break
		}
		total += runs[i].UnitsExplained
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
