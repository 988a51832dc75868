package state

import (
	"context"
	"path/filepath"
	"testing"
)

// TestSQLiteBackendRoundTrip verifies the file-backed store survives a
// close and reopen: migrations apply on first open and no-op on the
// second, the document upserts, and the state reads back intact.
func TestSQLiteBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := NewStore(backend, testLogger())
	if _, err := store.SetPanel(ctx, PanelWorkout); err != nil {
		t.Fatalf("set panel: %v", err)
	}
	if _, err := store.SetSelectedSessions(ctx, []string{"Day 1"}); err != nil {
		t.Fatalf("set selections: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	backend, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	store = NewStore(backend, testLogger())
	defer store.Close()

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Panel != PanelWorkout {
		t.Errorf("panel = %q, want %q", snap.Panel, PanelWorkout)
	}
	if len(snap.SelectedSessions) != 1 || snap.SelectedSessions[0] != "Day 1" {
		t.Errorf("selections = %q, want [Day 1]", snap.SelectedSessions)
	}
}

// TestSQLiteBackendDelete verifies deleting the document leaves the table
// usable and a later load regenerates defaults.
func TestSQLiteBackendDelete(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer backend.Close()

	if err := backend.Put(ctx, []byte(`{"version":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := backend.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, err := backend.Get(ctx); err != nil || found {
		t.Errorf("get after delete = found %v, err %v; want absent", found, err)
	}

	store := NewStore(backend, testLogger())
	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", snap.Version, SchemaVersion)
	}
}
