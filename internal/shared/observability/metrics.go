package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	FilesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logicdoc_files_processed_total",
		Help: "Files handled by documentation runs, by phase and outcome.",
	}, []string{"phase", "status"})

	UnitsExplainedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logicdoc_units_explained_total",
		Help: "Function units that produced an explanation.",
	})

	UnitsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logicdoc_units_dropped_total",
		Help: "Candidate units skipped because no name could be extracted.",
	})

	PartitionLinesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logicdoc_partition_lines_total",
		Help: "Lines kept or dropped by the logic/rendering partitioner.",
	}, []string{"decision"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "logicdoc_analysis_seconds",
		Help:    "Time spent analyzing one file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logicdoc_run_seconds",
		Help:    "Wall time of a full documentation run.",
		Buckets: prometheus.DefBuckets,
	})

	MarkersAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logicdoc_markers_added_total",
		Help: "Documentation markers written into source files.",
	})

	SyntaxErrorNodesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logicdoc_syntax_error_nodes_total",
		Help: "Tree-sitter error and missing nodes seen across documented files.",
	})

	SecretsRedactedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logicdoc_secrets_redacted_total",
		Help: "Credential-like values masked in report text, by detector kind.",
	}, []string{"kind"})

	SourceCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logicdoc_source_cache_total",
		Help: "Source content cache lookups, by result.",
	}, []string{"result"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logicdoc_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logicdoc_rebuilds_throttled_total",
		Help: "Watch-mode rebuilds skipped by the rebuild limiter.",
	})

	HistoryQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "logicdoc_history_queue_depth",
		Help: "Run records waiting to be persisted.",
	})

	HistoryWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logicdoc_history_writes_total",
		Help: "Run record persistence attempts, by result.",
	}, []string{"result"})

	PublishedArtifactsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logicdoc_published_artifacts_total",
		Help: "Artifacts uploaded to object storage.",
	})

	RunFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logicdoc_run_failures_total",
		Help: "Documentation runs that returned an error, by error code.",
	}, []string{"code"})
)
