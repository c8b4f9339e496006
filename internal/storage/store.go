package storage

import (
	"time"
)

// Run outcomes recorded in the journal.
const (
	OutcomeClean    = "clean"    // no duplicates found
	OutcomeApplied  = "applied"  // duplicates removed and database replaced
	OutcomeDeclined = "declined" // operator did not confirm
	OutcomeDryRun   = "dry_run"  // duplicates found, prompt skipped
	OutcomeFailed   = "failed"   // run aborted by an error after the backup
)

// RunRecord is one journal entry describing a cleanup run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	DBPath     string
	BackupPath string
	Original   int
	Kept       int
	Removed    int
	Malformed  int
	Outcome    string
	Error      string
}

// Store is the persistence interface for the run journal.
type Store interface {
	RecordRun(rec RunRecord) error
	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(limit int) ([]RunRecord, error)
	// PruneRuns deletes runs that started before now-retention.
	PruneRuns(retention time.Duration) (int, error)

	SizeBytes() (int64, error)
	Close() error
}
