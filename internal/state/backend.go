package state

import (
	"context"
	"sync"
)

// Backend stores the single serialized snapshot document under StorageKey.
// Implementations treat the payload as opaque bytes; versioning and
// default-merging live in the Store.
type Backend interface {
	Get(ctx context.Context) (data []byte, found bool, err error)
	Put(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*SQLiteBackend)(nil)
	_ Backend = (*PostgresBackend)(nil)
)

// MemoryBackend keeps the document in process memory. Used by tests and
// for ephemeral runs where persistence across restarts does not matter.
type MemoryBackend struct {
	mu    sync.Mutex
	doc   []byte
	found bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Get(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.found {
		return nil, false, nil
	}
	return append([]byte(nil), m.doc...), true, nil
}

func (m *MemoryBackend) Put(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = append([]byte(nil), data...)
	m.found = true
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc, m.found = nil, false
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
