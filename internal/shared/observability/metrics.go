package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crateview_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	ParserFaultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crateview_parser_faults_total",
		Help: "Total number of parser panics re-raised as fatal.",
	})

	ReindexTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crateview_reindex_total",
		Help: "Total number of parallel symbol index builds performed.",
	})

	ReindexDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crateview_reindex_seconds",
		Help:    "Time spent building symbol indexes across a snapshot.",
		Buckets: prometheus.DefBuckets,
	})

	RegistryFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crateview_registry_files",
		Help: "Number of files in the current registry.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crateview_module_graph_nodes",
		Help: "Number of nodes in the current module graph.",
	})

	RegistryCopiesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crateview_registry_copies_total",
		Help: "Total number of copy-on-write registry copies caused by outstanding snapshots.",
	})

	ChangesAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crateview_changes_applied_total",
		Help: "Total number of file changes applied, by kind.",
	}, []string{"kind"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crateview_diagnostics_total",
		Help: "Total number of diagnostics produced, by code.",
	}, []string{"code"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crateview_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
