package state

import (
	"context"
	"path/filepath"
	"testing"
)

const testSnippet = "for-loop"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() }) //nolint:errcheck // cleanup is best-effort
	return store
}

func TestOpen_CreatesDBAndSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "history.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = store.Close() }() //nolint:errcheck // cleanup is best-effort

	var version int
	ctx := context.Background()
	if err := store.db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version); err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := store1.RecordUsage(testSnippet, map[int]string{1: "i"}); err != nil {
		t.Fatalf("RecordUsage failed: %v", err)
	}
	_ = store1.Close() //nolint:errcheck // cleanup is best-effort

	store2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer func() { _ = store2.Close() }() //nolint:errcheck // cleanup is best-effort

	vals, err := store2.LastValues(testSnippet)
	if err != nil {
		t.Fatalf("LastValues failed: %v", err)
	}
	if vals[1] != "i" {
		t.Errorf("values after reopen = %v", vals)
	}
}

func TestLastUsage_NeverUsed(t *testing.T) {
	store := newTestStore(t)

	r, err := store.LastUsage("nope")
	if err != nil {
		t.Fatalf("LastUsage failed: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil record, got %+v", r)
	}

	vals, err := store.LastValues("nope")
	if err != nil || vals != nil {
		t.Errorf("LastValues = %v, %v; want nil, nil", vals, err)
	}
}

func TestRecordUsage_LatestWins(t *testing.T) {
	store := newTestStore(t)

	if err := store.RecordUsage(testSnippet, map[int]string{1: "i", 2: "n"}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordUsage(testSnippet, map[int]string{1: "j"}); err != nil {
		t.Fatal(err)
	}

	r, err := store.LastUsage(testSnippet)
	if err != nil {
		t.Fatalf("LastUsage failed: %v", err)
	}
	if r == nil {
		t.Fatal("expected a record")
	}
	if len(r.Values) != 1 || r.Values[1] != "j" {
		t.Errorf("Values = %v, want {1: j}", r.Values)
	}
	if r.UsedAt.IsZero() {
		t.Error("UsedAt should be set")
	}
}

func TestRecordUsage_NilValues(t *testing.T) {
	store := newTestStore(t)

	if err := store.RecordUsage(testSnippet, nil); err != nil {
		t.Fatalf("RecordUsage(nil) failed: %v", err)
	}
	vals, err := store.LastValues(testSnippet)
	if err != nil {
		t.Fatal(err)
	}
	if vals == nil || len(vals) != 0 {
		t.Errorf("values = %v, want empty map", vals)
	}
}

func TestRecent(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"a", "b", "a", "c", "a"} {
		if err := store.RecordUsage(name, nil); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].SnippetName != "a" || recent[0].Uses != 3 {
		t.Errorf("recent[0] = %+v, want a used 3 times", recent[0])
	}
	if recent[1].SnippetName != "c" || recent[1].Uses != 1 {
		t.Errorf("recent[1] = %+v, want c used once", recent[1])
	}
}

func TestPruneHistory(t *testing.T) {
	store := newTestStore(t)

	for i := 1; i <= 5; i++ {
		if err := store.RecordUsage(testSnippet, map[int]string{1: string(rune('a' + i))}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.RecordUsage("other", nil); err != nil {
		t.Fatal(err)
	}

	if err := store.PruneHistory(testSnippet, 2); err != nil {
		t.Fatalf("PruneHistory failed: %v", err)
	}

	var count int
	ctx := context.Background()
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippet_usage WHERE snippet_name = ?`, testSnippet).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	vals, _ := store.LastValues(testSnippet)
	if vals[1] != "f" {
		t.Errorf("latest value = %q, want f", vals[1])
	}
	if vals, _ := store.LastValues("other"); vals == nil {
		t.Error("other snippet history should be untouched")
	}
}

func TestRemoveAndRenameSnippet(t *testing.T) {
	store := newTestStore(t)

	_ = store.RecordUsage("old", map[int]string{1: "x"})
	_ = store.RecordUsage("gone", nil)

	if err := store.RenameSnippet("old", "new"); err != nil {
		t.Fatalf("RenameSnippet failed: %v", err)
	}
	if vals, _ := store.LastValues("old"); vals != nil {
		t.Error("old name should have no history")
	}
	if vals, _ := store.LastValues("new"); vals[1] != "x" {
		t.Errorf("new name values = %v", vals)
	}

	if err := store.RemoveSnippet("gone"); err != nil {
		t.Fatalf("RemoveSnippet failed: %v", err)
	}
	if r, _ := store.LastUsage("gone"); r != nil {
		t.Error("history should be removed")
	}
}
