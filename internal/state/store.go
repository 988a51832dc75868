package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the persisted application snapshot: one JSON document under
// one fixed key, guarded by schema-version gating. All mutation goes
// through the named action methods in actions.go; each is a fresh
// read-modify-write cycle, serialized by a mutex so back-to-back mutations
// observe each other's effects in call order.
type Store struct {
	mu      sync.Mutex
	backend Backend
	log     *slog.Logger
	now     func() time.Time
	newID   func() uuid.UUID
}

// Option adjusts Store construction.
type Option func(*Store)

// WithClock replaces the wall clock behind completion and upload
// timestamps; tests pin it for deterministic documents.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDSource replaces the import id generator.
func WithIDSource(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore wires a store over the given backend.
func NewStore(backend Backend, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     log,
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current snapshot. A missing document yields defaults; a
// corrupt or version-mismatched document clears the underlying storage and
// yields defaults. Only genuine backend I/O failures surface as errors, so
// a transient read problem is never mistaken for an empty state that a
// later write would persist over good data.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load assumes s.mu is held.
func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	data, found, err := s.backend.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}
	if !found {
		return DefaultSnapshot(), nil
	}

	// Version gate first. A document without a version field counts as a
	// mismatch: it predates versioning entirely.
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		s.log.Warn("discarding unreadable state document", "error", err)
		return s.discard(ctx, "clearing unreadable state")
	}
	if probe.Version == nil || *probe.Version != SchemaVersion {
		stored := -1
		if probe.Version != nil {
			stored = *probe.Version
		}
		s.log.Info("discarding state document with mismatched schema",
			"stored_version", stored, "current_version", SchemaVersion)
		return s.discard(ctx, "clearing outdated state")
	}

	// Stored fields merge over defaults: a same-version document missing an
	// optional field keeps that field's default.
	snap := DefaultSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		s.log.Warn("discarding undecodable state document", "error", err)
		return s.discard(ctx, "clearing undecodable state")
	}
	snap.normalize()
	return snap, nil
}

// discard clears the stored document and hands back defaults.
func (s *Store) discard(ctx context.Context, action string) (*Snapshot, error) {
	if err := s.backend.Delete(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return DefaultSnapshot(), nil
}

// update runs one read-modify-write cycle: load, mutate, persist, return
// the stored result. A failed write leaves the prior stored document
// untouched; the caller gets the error and no snapshot.
func (s *Store) update(ctx context.Context, mutate func(*Snapshot)) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	mutate(snap)

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	if err := s.backend.Put(ctx, data); err != nil {
		return nil, fmt.Errorf("writing state: %w", err)
	}
	return snap, nil
}

// Clear removes the stored document entirely rather than writing empty
// defaults; the next Load regenerates a clean default document. Clearing an
// already-empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	return nil
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
