package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bandb_cleanup"

var (
	// EntriesProcessed counts non-empty database lines by parse classification.
	EntriesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_processed_total",
		Help:      "Non-empty database lines processed, by classification.",
	}, []string{"kind"})

	// DuplicatesRemoved counts duplicate ban records removed from the
	// database by applied runs, per jail.
	DuplicatesRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicates_removed_total",
		Help:      "Duplicate ban records removed from the database by applied runs, per jail.",
	}, []string{"jail"})

	// BackupsCreated counts snapshot copies written before a run.
	BackupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backups_created_total",
		Help:      "Database snapshots written before processing.",
	})

	// Runs counts completed runs by outcome.
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Cleanup runs by outcome.",
	}, []string{"outcome"})

	// RunDuration records the wall time of a run, excluding time spent at the prompt.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Cleanup run duration in seconds, excluding the confirmation wait.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
	})

	// DatabaseEntries tracks entry counts of the last run.
	DatabaseEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "database_entries",
		Help:      "Entry counts observed by the last run.",
	}, []string{"state"})

	// LastRunTimestamp is the Unix time the last run finished.
	LastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last cleanup run finished.",
	})

	// JournalSizeBytes tracks the bbolt journal file size.
	JournalSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "journal_size_bytes",
		Help:      "bbolt run journal on-disk file size in bytes.",
	})
)

// WriteTextfile dumps the default registry to path in the node_exporter
// textfile-collector format. The file is written atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
