package testutil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/developingchet/bandb-cleanup/internal/storage"
)

// MockStore implements storage.Store with an in-memory slice for testing.
// All methods are safe for concurrent use.
type MockStore struct {
	mu   sync.Mutex
	runs []storage.RunRecord

	// Error injection: method -> next error (consumed on first call)
	errors map[string]error

	// Size is the value returned by SizeBytes()
	Size   int64
	Closed bool
}

// NewMockStore returns a zero-state MockStore ready for use.
func NewMockStore() *MockStore {
	return &MockStore{
		errors: make(map[string]error),
		Size:   1024,
	}
}

// SetError injects an error to be returned on the next call to the named method.
func (m *MockStore) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method] = err
}

func (m *MockStore) popError(method string) error {
	err := m.errors[method]
	delete(m.errors, method)
	return err
}

func (m *MockStore) RecordRun(rec storage.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.popError("RecordRun"); err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("run record has no id")
	}
	m.runs = append(m.runs, rec)
	return nil
}

func (m *MockStore) ListRuns(limit int) ([]storage.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.popError("ListRuns"); err != nil {
		return nil, err
	}
	out := make([]storage.RunRecord, len(m.runs))
	copy(out, m.runs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStore) PruneRuns(retention time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.popError("PruneRuns"); err != nil {
		return 0, err
	}
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)
	kept := m.runs[:0]
	pruned := 0
	for _, r := range m.runs {
		if r.StartedAt.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, r)
	}
	m.runs = kept
	return pruned, nil
}

func (m *MockStore) SizeBytes() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.popError("SizeBytes"); err != nil {
		return 0, err
	}
	return m.Size, nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.popError("Close")
}

// Runs returns a copy of every recorded run in insertion order.
func (m *MockStore) Runs() []storage.RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.RunRecord, len(m.runs))
	copy(out, m.runs)
	return out
}
