package autosave

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Store.Read when no snapshot exists for a key.
var ErrNotFound = errors.New("autosave: snapshot not found")

// Store is the durable key-value collaborator behind autosave. One snapshot
// per key; Write overwrites.
type Store interface {
	Write(ctx context.Context, snap *Snapshot) error
	Read(ctx context.Context, key Key) (*Snapshot, error)
	Delete(ctx context.Context, key Key) error
}

// MemoryStore is an in-process Store used in tests and development.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

func (m *MemoryStore) Write(_ context.Context, snap *Snapshot) error {
	if err := snap.Key.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	m.snaps[snap.Key.String()] = &cp
	return nil
}

func (m *MemoryStore) Read(_ context.Context, key Key) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[key.String()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key.String())
	return nil
}
