package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	testID   = uuid.MustParse("6b1e2c3d-0000-4000-8000-000000000001")
)

func newTestStore() (*Store, *MemoryBackend) {
	backend := NewMemoryBackend()
	store := NewStore(backend, testLogger(),
		WithClock(func() time.Time { return testTime }),
		WithIDSource(func() uuid.UUID { return testID }),
	)
	return store, backend
}

// failingBackend wraps a MemoryBackend and fails selected operations, for
// exercising the error paths.
type failingBackend struct {
	*MemoryBackend
	failGet bool
	failPut bool
}

func (f *failingBackend) Get(ctx context.Context) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("disk trouble")
	}
	return f.MemoryBackend.Get(ctx)
}

func (f *failingBackend) Put(ctx context.Context, data []byte) error {
	if f.failPut {
		return errors.New("disk trouble")
	}
	return f.MemoryBackend.Put(ctx, data)
}

// TestLoadEmptyReturnsDefaults verifies a fresh store reads as the default
// document: current version, upload panel, every collection empty but
// non-nil.
func TestLoadEmptyReturnsDefaults(t *testing.T) {
	store, _ := newTestStore()
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", snap.Version, SchemaVersion)
	}
	if snap.Panel != PanelUpload {
		t.Errorf("panel = %q, want %q", snap.Panel, PanelUpload)
	}
	if snap.Rows == nil || snap.SessionNames == nil || snap.SelectedSessions == nil {
		t.Error("slice fields must be non-nil")
	}
	if snap.CheckedSets == nil || snap.Overrides == nil || snap.Completions == nil {
		t.Error("map fields must be non-nil")
	}
}

// TestWriteReadRoundTrip verifies a snapshot written through the actions
// reads back field-for-field after default-merging.
func TestWriteReadRoundTrip(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.SetPanel(ctx, PanelWorkout); err != nil {
		t.Fatalf("set panel: %v", err)
	}
	written, err := store.SetSelectedSessions(ctx, []string{"Day 2", "Day 1"})
	if err != nil {
		t.Fatalf("set selections: %v", err)
	}

	read, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(written, read) {
		t.Errorf("read = %+v, want %+v", read, written)
	}
}

// TestLoadCorruptDocument verifies an unparsable stored document degrades
// to defaults and clears the underlying storage, not an error.
func TestLoadCorruptDocument(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()

	if err := backend.Put(ctx, []byte("{not json")); err != nil {
		t.Fatalf("put: %v", err)
	}
	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Version != SchemaVersion || snap.Panel != PanelUpload {
		t.Errorf("snapshot = %+v, want defaults", snap)
	}
	if _, found, _ := backend.Get(ctx); found {
		t.Error("corrupt document still stored, want cleared")
	}
}

// TestLoadVersionMismatchDiscards verifies whole-document invalidation: a
// stored version 0 document reads as defaults and is removed, and after
// the version-set action the persisted document carries the current
// version.
func TestLoadVersionMismatchDiscards(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()

	old := `{"version":0,"panel":"workout","csv_text":"Day,Exercise\n"}`
	if err := backend.Put(ctx, []byte(old)); err != nil {
		t.Fatalf("put: %v", err)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", snap.Version, SchemaVersion)
	}
	if snap.Panel != PanelUpload || snap.CSVText != "" {
		t.Errorf("old fields carried over: %+v", snap)
	}
	if _, found, _ := backend.Get(ctx); found {
		t.Error("mismatched document still stored, want cleared")
	}

	if _, err := store.SetVersion(ctx, SchemaVersion); err != nil {
		t.Fatalf("set version: %v", err)
	}
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again.Version != SchemaVersion {
		t.Errorf("version after set = %d, want %d", again.Version, SchemaVersion)
	}
}

// TestLoadMissingVersionField verifies a document with no version field at
// all counts as a mismatch, since it predates versioning.
func TestLoadMissingVersionField(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()

	if err := backend.Put(ctx, []byte(`{"panel":"workout"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Panel != PanelUpload {
		t.Errorf("panel = %q, want default", snap.Panel)
	}
	if _, found, _ := backend.Get(ctx); found {
		t.Error("unversioned document still stored, want cleared")
	}
}

// TestLoadShallowMergesDefaults verifies a same-version document missing
// optional fields reads with those fields at their defaults: stored fields
// win, absent fields fall back, collections come back non-nil.
func TestLoadShallowMergesDefaults(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()

	doc := `{"version":1,"panel":"workout","selected_sessions":["Day 2"]}`
	if err := backend.Put(ctx, []byte(doc)); err != nil {
		t.Fatalf("put: %v", err)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Panel != PanelWorkout {
		t.Errorf("panel = %q, want stored value", snap.Panel)
	}
	if len(snap.SelectedSessions) != 1 || snap.SelectedSessions[0] != "Day 2" {
		t.Errorf("selections = %q, want [Day 2]", snap.SelectedSessions)
	}
	if snap.Rows == nil || snap.CheckedSets == nil || snap.Overrides == nil || snap.Completions == nil {
		t.Error("absent collections must read as empty, non-nil defaults")
	}
}

// TestSequentialUpdatesObserve verifies the read-modify-write contract: the
// second mutation merges on top of the first one's write, so both effects
// land.
func TestSequentialUpdatesObserve(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.SetPanel(ctx, PanelSessions); err != nil {
		t.Fatalf("set panel: %v", err)
	}
	snap, err := store.SetSelectedSessions(ctx, []string{"Day 1"})
	if err != nil {
		t.Fatalf("set selections: %v", err)
	}
	if snap.Panel != PanelSessions {
		t.Errorf("panel = %q, first write lost", snap.Panel)
	}
	if len(snap.SelectedSessions) != 1 {
		t.Errorf("selections = %q, second write lost", snap.SelectedSessions)
	}
}

// TestClearRemovesDocument verifies clear deletes the document outright
// rather than storing empty defaults, and that clearing twice is fine.
func TestClearRemovesDocument(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()

	if _, err := store.SetPanel(ctx, PanelWorkout); err != nil {
		t.Fatalf("set panel: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found, _ := backend.Get(ctx); found {
		t.Error("document still stored after clear")
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Panel != PanelUpload {
		t.Errorf("panel = %q, want defaults after clear", snap.Panel)
	}
}

// TestWriteFailureLeavesStateIntact verifies a failed write reports an
// error and leaves the previously stored document untouched.
func TestWriteFailureLeavesStateIntact(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend()}
	store := NewStore(backend, testLogger())
	ctx := context.Background()

	if _, err := store.SetPanel(ctx, PanelWorkout); err != nil {
		t.Fatalf("set panel: %v", err)
	}

	backend.failPut = true
	if _, err := store.SetSelectedSessions(ctx, []string{"Day 1"}); err == nil {
		t.Fatal("expected write error")
	}
	backend.failPut = false

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Panel != PanelWorkout {
		t.Errorf("panel = %q, prior write lost", snap.Panel)
	}
	if len(snap.SelectedSessions) != 0 {
		t.Errorf("selections = %q, failed write reached storage", snap.SelectedSessions)
	}
}

// TestLoadBackendError verifies a genuine read failure surfaces as an
// error instead of defaults; silently returning defaults here could let a
// later write clobber a healthy document.
func TestLoadBackendError(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend(), failGet: true}
	store := NewStore(backend, testLogger())

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error from failing backend")
	}
}
