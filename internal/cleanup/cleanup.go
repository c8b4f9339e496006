package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/developingchet/bandb-cleanup/internal/banfile"
	"github.com/developingchet/bandb-cleanup/internal/commit"
	"github.com/developingchet/bandb-cleanup/internal/confirm"
	"github.com/developingchet/bandb-cleanup/internal/dedupe"
	"github.com/developingchet/bandb-cleanup/internal/metrics"
	"github.com/developingchet/bandb-cleanup/internal/privilege"
	"github.com/developingchet/bandb-cleanup/internal/report"
	"github.com/developingchet/bandb-cleanup/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Prompt is shown before the database is replaced.
const Prompt = "\nReplace database with cleaned version? (y/n): "

// Config holds the per-run settings.
type Config struct {
	DatabasePath     string
	DryRun           bool
	HistoryRetention time.Duration
	MetricsTextfile  string
}

// Outcome summarises a finished run.
type Outcome struct {
	RunID      string
	BackupPath string
	Result     dedupe.Result
	Status     string // one of the storage.Outcome* values
}

// Applied reports whether the database file was replaced.
func (o *Outcome) Applied() bool {
	return o != nil && o.Status == storage.OutcomeApplied
}

// StoreOpener opens the run journal. It is only called once the pre-flight
// checks have passed, so a run that fails them creates no journal files.
type StoreOpener func() (storage.Store, error)

// Runner executes one backup → dedupe → confirm → replace cycle.
type Runner struct {
	cfg       Config
	checker   privilege.Checker
	confirmer confirm.Confirmer
	openStore StoreOpener // nil disables the journal
	reporter  *report.Reporter
	log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

// New constructs a Runner. openStore may be nil.
func New(cfg Config, checker privilege.Checker, confirmer confirm.Confirmer,
	openStore StoreOpener, reporter *report.Reporter, log zerolog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		checker:   checker,
		confirmer: confirmer,
		openStore: openStore,
		reporter:  reporter,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run performs the cleanup. Pre-flight failures (privilege, missing file,
// backup) return before anything is written. A declined confirmation is a
// successful run with Status OutcomeDeclined.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	started := r.now()
	out := &Outcome{RunID: r.newID()}
	path := r.cfg.DatabasePath
	log := r.log.With().Str("run_id", out.RunID).Str("db", path).Logger()

	if err := r.checker.Check(path); err != nil {
		log.Error().Err(err).Msg("privilege check failed")
		return nil, err
	}
	if err := banfile.Exists(path); err != nil {
		log.Error().Err(err).Msg("database unavailable")
		return nil, err
	}

	store := r.journal(log)
	if store != nil {
		defer store.Close()
	}

	snapAt := r.now()
	r.reporter.Backup(commit.BackupPath(path, snapAt))
	backup, err := commit.Snapshot(path, snapAt)
	if err != nil {
		log.Error().Err(err).Msg("backup failed")
		return nil, err
	}
	metrics.BackupsCreated.Inc()
	out.BackupPath = backup
	log.Info().Str("backup", backup).Msg("backup created")

	var waited time.Duration
	runErr := r.process(ctx, out, log, &waited)
	if runErr != nil {
		out.Status = storage.OutcomeFailed
	}
	r.finish(store, started, waited, out, runErr, log)
	return out, runErr
}

func (r *Runner) process(ctx context.Context, out *Outcome, log zerolog.Logger, waited *time.Duration) error {
	path := r.cfg.DatabasePath

	db, err := banfile.Load(path)
	if err != nil {
		return err
	}

	r.reporter.Start()
	out.Result = dedupe.Lines(db.Lines, func(rm dedupe.Removal) {
		r.reporter.Removal(rm)
		log.Debug().Str("ip", rm.IP).Str("jail", rm.Jail).
			Str("timestamp", rm.Timestamp).Str("first_seen", rm.FirstSeen).
			Msg("duplicate dropped")
	})
	r.reporter.Summary(out.Result)

	removed := len(out.Result.Removed)
	switch {
	case removed == 0:
		r.reporter.NoDuplicates()
		out.Status = storage.OutcomeClean
		return nil
	case r.cfg.DryRun:
		r.reporter.DryRun(removed)
		out.Status = storage.OutcomeDryRun
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled before confirmation: %w", err)
	}

	askedAt := time.Now()
	ok, err := r.confirmer.Confirm(Prompt)
	*waited = time.Since(askedAt)
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !ok {
		r.reporter.Cancelled()
		out.Status = storage.OutcomeDeclined
		log.Info().Int("removed", removed).Msg("cleanup declined by operator")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled before write: %w", err)
	}
	if err := commit.Replace(path, db.Header, out.Result.Kept, out.BackupPath); err != nil {
		return err
	}
	for _, rm := range out.Result.Removed {
		metrics.DuplicatesRemoved.WithLabelValues(rm.Jail).Inc()
	}
	r.reporter.Applied(out.BackupPath)
	out.Status = storage.OutcomeApplied
	log.Info().Int("removed", removed).Int("kept", len(out.Result.Kept)).Msg("database replaced")
	return nil
}

// journal opens the run journal, or returns nil when it is disabled or
// cannot be opened.
func (r *Runner) journal(log zerolog.Logger) storage.Store {
	if r.openStore == nil {
		return nil
	}
	store, err := r.openStore()
	if err != nil {
		log.Warn().Err(err).Msg("journal unavailable; continuing without it")
		return nil
	}
	return store
}

// finish records metrics and the journal entry. Failures here are logged and
// never change the run's result.
func (r *Runner) finish(store storage.Store, started time.Time, waited time.Duration, out *Outcome, runErr error, log zerolog.Logger) {
	finished := r.now()
	res := out.Result

	metrics.Runs.WithLabelValues(out.Status).Inc()
	metrics.RunDuration.Observe((finished.Sub(started) - waited).Seconds())
	metrics.EntriesProcessed.WithLabelValues(banfile.KindParsed.String()).Add(float64(res.Original - res.Malformed))
	metrics.EntriesProcessed.WithLabelValues(banfile.KindMalformed.String()).Add(float64(res.Malformed))
	metrics.DatabaseEntries.WithLabelValues("original").Set(float64(res.Original))
	metrics.DatabaseEntries.WithLabelValues("kept").Set(float64(len(res.Kept)))
	metrics.DatabaseEntries.WithLabelValues("removed").Set(float64(len(res.Removed)))
	metrics.DatabaseEntries.WithLabelValues("malformed").Set(float64(res.Malformed))
	metrics.LastRunTimestamp.Set(float64(finished.Unix()))

	if store != nil {
		rec := storage.RunRecord{
			ID:         out.RunID,
			StartedAt:  started.UTC(),
			FinishedAt: finished.UTC(),
			DBPath:     r.cfg.DatabasePath,
			BackupPath: out.BackupPath,
			Original:   res.Original,
			Kept:       len(res.Kept),
			Removed:    len(res.Removed),
			Malformed:  res.Malformed,
			Outcome:    out.Status,
		}
		if runErr != nil {
			rec.Error = runErr.Error()
		}
		if err := store.RecordRun(rec); err != nil {
			log.Warn().Err(err).Msg("journal: record run failed")
		}
		if pruned, err := store.PruneRuns(r.cfg.HistoryRetention); err != nil {
			log.Warn().Err(err).Msg("journal: prune failed")
		} else if pruned > 0 {
			log.Debug().Int("count", pruned).Msg("journal: pruned old runs")
		}
		if size, err := store.SizeBytes(); err != nil {
			log.Warn().Err(err).Msg("journal: read size failed")
		} else {
			metrics.JournalSizeBytes.Set(float64(size))
		}
	}

	if r.cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(r.cfg.MetricsTextfile); err != nil {
			log.Warn().Err(err).Str("path", r.cfg.MetricsTextfile).Msg("write metrics textfile failed")
		}
	}

	log.Info().Str("outcome", out.Status).Int("original", res.Original).
		Int("kept", len(res.Kept)).Int("removed", len(res.Removed)).
		Dur("elapsed", finished.Sub(started)-waited).Msg("run complete")
}
