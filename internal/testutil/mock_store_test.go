package testutil_test

import (
	"errors"
	"testing"
	"time"

	"github.com/developingchet/bandb-cleanup/internal/storage"
	"github.com/developingchet/bandb-cleanup/internal/testutil"
)

// compile-time interface check
var _ storage.Store = (*testutil.MockStore)(nil)

func TestMockStore_Runs(t *testing.T) {
	t.Run("list is newest first", func(t *testing.T) {
		s := testutil.NewMockStore()
		now := time.Now()
		_ = s.RecordRun(storage.RunRecord{ID: "old", StartedAt: now.Add(-time.Minute)})
		_ = s.RecordRun(storage.RunRecord{ID: "new", StartedAt: now})
		runs, err := s.ListRuns(0)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != "new" {
			t.Fatalf("got %+v", runs)
		}
	})

	t.Run("limit", func(t *testing.T) {
		s := testutil.NewMockStore()
		for _, id := range []string{"a", "b", "c"} {
			_ = s.RecordRun(storage.RunRecord{ID: id, StartedAt: time.Now()})
		}
		runs, _ := s.ListRuns(1)
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
	})

	t.Run("empty id rejected", func(t *testing.T) {
		s := testutil.NewMockStore()
		if err := s.RecordRun(storage.RunRecord{}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("prune", func(t *testing.T) {
		s := testutil.NewMockStore()
		_ = s.RecordRun(storage.RunRecord{ID: "old", StartedAt: time.Now().Add(-48 * time.Hour)})
		_ = s.RecordRun(storage.RunRecord{ID: "new", StartedAt: time.Now()})
		n, err := s.PruneRuns(time.Hour)
		if err != nil || n != 1 {
			t.Fatalf("PruneRuns: n=%d err=%v", n, err)
		}
		if got := s.Runs(); len(got) != 1 || got[0].ID != "new" {
			t.Fatalf("remaining: %+v", got)
		}
	})
}

func TestMockStore_ErrorInjection(t *testing.T) {
	s := testutil.NewMockStore()
	boom := errors.New("boom")
	s.SetError("RecordRun", boom)

	if err := s.RecordRun(storage.RunRecord{ID: "x"}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	// Consumed after one call.
	if err := s.RecordRun(storage.RunRecord{ID: "x"}); err != nil {
		t.Fatalf("second call should succeed, got %v", err)
	}

	s.SetError("SizeBytes", boom)
	if _, err := s.SizeBytes(); !errors.Is(err, boom) {
		t.Fatalf("SizeBytes: expected injected error, got %v", err)
	}
	if size, err := s.SizeBytes(); err != nil || size != 1024 {
		t.Fatalf("SizeBytes: got %d, %v", size, err)
	}
}

func TestMockStore_Close(t *testing.T) {
	s := testutil.NewMockStore()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !s.Closed {
		t.Error("Closed flag not set")
	}
}
