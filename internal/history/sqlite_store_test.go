package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store := NewSQLiteStore()
	if err := store.Initialize(filepath.Join(t.TempDir(), "history.db")); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().Truncate(time.Second)
	entries := []Entry{
		{ID: "a1", Action: "tap", Detail: "x=100 y=200", Serial: "emulator-5554", Timestamp: base.Add(-2 * time.Second)},
		{ID: "b2", Action: "swipe", Detail: "up", Timestamp: base.Add(-1 * time.Second)},
		{ID: "c3", Action: "launch_app", Detail: "chrome", Timestamp: base},
	}
	for _, e := range entries {
		if err := store.Record(e); err != nil {
			t.Fatalf("Failed to record entry %s: %v", e.ID, err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Failed to read recent entries: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(recent))
	}
	if recent[0].ID != "c3" || recent[1].ID != "b2" {
		t.Errorf("Expected newest-first order, got %s then %s", recent[0].ID, recent[1].ID)
	}
	if recent[0].Action != "launch_app" || recent[0].Detail != "chrome" {
		t.Errorf("Unexpected entry contents: %+v", recent[0])
	}
	if !recent[0].Timestamp.Equal(base) {
		t.Errorf("Expected timestamp %v, got %v", base, recent[0].Timestamp)
	}
	if recent[1].Serial != "" {
		t.Errorf("Expected empty serial, got %q", recent[1].Serial)
	}
}

func TestRecentEmpty(t *testing.T) {
	store := newTestStore(t)

	recent, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Failed to read recent entries: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Expected no entries, got %d", len(recent))
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Record(Entry{ID: "a1", Action: "tap", Detail: "x=1 y=1", Timestamp: time.Now()}); err != nil {
		t.Fatalf("Failed to record entry: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Failed to clear history: %v", err)
	}

	recent, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Failed to read recent entries: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Expected no entries after clear, got %d", len(recent))
	}
}
