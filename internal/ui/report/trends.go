package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"logicdoc/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRun\tDocumented\tMissing\tExplained\tDropped\tDeltaDocumented\tDeltaMissing\tDeltaExplained\tDropRatePct\tAvgExplained\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.FilesDocumented,
			point.FilesMissing,
			point.UnitsExplained,
			point.UnitsDropped,
			point.DeltaDocumented,
			point.DeltaMissing,
			point.DeltaExplained,
			point.DropRatePct,
			point.AvgExplained,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
