package webpushreg

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps registrations in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string][]Registration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string][]Registration)}
}

func (m *MemoryStore) List(_ context.Context, alias string) ([]Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.rows[alias])
	slices.SortFunc(out, func(a, b Registration) int { return cmp.Compare(a.RowKey, b.RowKey) })
	return out, nil
}

func (m *MemoryStore) InsertIfAbsent(_ context.Context, r Registration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.ContainsFunc(m.rows[r.UserAlias], func(x Registration) bool { return x.Endpoint == r.Endpoint }) {
		return false, nil
	}
	m.rows[r.UserAlias] = append(m.rows[r.UserAlias], r)
	return true, nil
}

func (m *MemoryStore) DeleteByEndpoint(_ context.Context, alias, endpoint string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.rows[alias])
	m.rows[alias] = slices.DeleteFunc(m.rows[alias], func(x Registration) bool { return x.Endpoint == endpoint })
	return before - len(m.rows[alias]), nil
}

func (m *MemoryStore) Delete(_ context.Context, alias, rowKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[alias] = slices.DeleteFunc(m.rows[alias], func(x Registration) bool { return x.RowKey == rowKey })
	return nil
}
