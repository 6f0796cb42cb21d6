package devicetemplate

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps templates in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]map[string]Template
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{templates: make(map[string]map[string]Template)}
}

// ByType returns the templates of deviceType ordered by platform.
func (m *MemoryStore) ByType(_ context.Context, deviceType string) ([]Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Template, 0, len(m.templates[deviceType]))
	for _, t := range m.templates[deviceType] {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Template) int { return cmp.Compare(a.Platform, b.Platform) })
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.templates[t.DeviceType] == nil {
		m.templates[t.DeviceType] = make(map[string]Template)
	}
	m.templates[t.DeviceType][t.Platform] = t
	return nil
}
