package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

const bucketRuns = "runs"

// JournalFile is the journal database name inside the data directory.
const JournalFile = "journal.db"

type bboltStore struct {
	db *bolt.DB
}

// NewBboltStore opens (or creates) a bbolt journal at dataDir/journal.db.
func NewBboltStore(dataDir string) (Store, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, JournalFile)
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt at %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketRuns)); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketRuns, err)
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltStore{db: db}, nil
}

// runKey orders entries by start time; the run id breaks ties.
func runKey(rec RunRecord) []byte {
	key := make([]byte, 8, 8+len(rec.ID))
	binary.BigEndian.PutUint64(key, uint64(rec.StartedAt.UnixNano()))
	return append(key, rec.ID...)
}

func (s *bboltStore) RecordRun(rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run record has no id")
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal RunRecord: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Put(runKey(rec), data)
	})
}

func (s *bboltStore) ListRuns(limit int) ([]RunRecord, error) {
	var result []RunRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(result) >= limit {
				break
			}
			var rec RunRecord
			if err := msgpack.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal RunRecord %x: %w", k, err)
			}
			result = append(result, rec)
		}
		return nil
	})
	return result, err
}

func (s *bboltStore) PruneRuns(retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := uint64(time.Now().Add(-retention).UnixNano())
	var pruned int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		var toDelete [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if len(k) < 8 || binary.BigEndian.Uint64(k[:8]) >= cutoff {
				break
			}
			key := make([]byte, len(k))
			copy(key, k)
			toDelete = append(toDelete, key)
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
			pruned++
		}
		return nil
	})
	return pruned, err
}

func (s *bboltStore) SizeBytes() (int64, error) {
	info, err := os.Stat(s.db.Path())
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *bboltStore) Close() error {
	return s.db.Close()
}
