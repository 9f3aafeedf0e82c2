package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Winter-Soldier02/FreQ/core"
)

// MemoryStore keeps the snapshot in memory. It is meant for tests and
// one-shot runs that do not need durability.
type MemoryStore struct {
	// PersistFunc, if set, is called before a snapshot is replaced. A non-nil
	// error aborts the Persist and leaves the snapshot untouched.
	PersistFunc func(rs core.ResultSet) error

	mu       sync.RWMutex
	snapshot core.ResultSet
	info     *SnapshotInfo
	persists int
	closed   bool
}

var (
	_ ResultStore = (*MemoryStore)(nil)
	_ Inspector   = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
// Returns the concrete type so tests can inspect PersistCount.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Persist(_ context.Context, rs core.ResultSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.persists++
	if err := core.ValidateResultSet(rs); err != nil {
		return err
	}
	if m.PersistFunc != nil {
		if err := m.PersistFunc(rs); err != nil {
			return err
		}
	}
	m.snapshot = clone(rs)
	m.info = NewSnapshotInfo(rs, time.Now())
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (core.ResultSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	if m.snapshot == nil {
		return core.ResultSet{}, nil
	}
	return clone(m.snapshot), nil
}

func (m *MemoryStore) Info(_ context.Context) (*SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	if m.info == nil {
		return nil, nil
	}
	info := *m.info
	return &info, nil
}

// PersistCount returns the number of Persist calls, failed ones included.
func (m *MemoryStore) PersistCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.persists
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func clone(rs core.ResultSet) core.ResultSet {
	out := make(core.ResultSet, len(rs))
	for i, g := range rs {
		g.Variants = slices.Clone(g.Variants)
		out[i] = g
	}
	return out
}
