package pushreg

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRegistry keeps registrations in process memory.
type MemoryRegistry struct {
	mu     sync.RWMutex
	minted map[string]struct{}
	regs   map[string]Registration
	now    func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		minted: make(map[string]struct{}),
		regs:   make(map[string]Registration),
		now:    time.Now,
	}
}

func (m *MemoryRegistry) NewID(context.Context) (string, error) {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.minted[id] = struct{}{}
	return id, nil
}

func (m *MemoryRegistry) ByHandle(_ context.Context, handle string, limit int) ([]Registration, error) {
	out := m.filter(func(r Registration) bool { return r.Handle == handle })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRegistry) ByTag(_ context.Context, tag string) ([]Registration, error) {
	return m.filter(func(r Registration) bool { return slices.Contains(r.Tags, tag) }), nil
}

func (m *MemoryRegistry) List(context.Context) ([]Registration, error) {
	return m.filter(func(Registration) bool { return true }), nil
}

func (m *MemoryRegistry) Upsert(_ context.Context, r Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	prev, exists := m.regs[r.ID]
	_, minted := m.minted[r.ID]
	switch {
	case exists:
		r.CreatedAt = prev.CreatedAt
	case minted:
		r.CreatedAt = now
		delete(m.minted, r.ID)
	default:
		return ErrRegistrationGone
	}

	r.Tags = slices.Clone(r.Tags)
	r.UpdatedAt = now
	m.regs[r.ID] = r
	return nil
}

func (m *MemoryRegistry) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.regs, id)
	delete(m.minted, id)
	return nil
}

func (m *MemoryRegistry) filter(keep func(Registration) bool) []Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Registration
	for _, r := range m.regs {
		if keep(r) {
			r.Tags = slices.Clone(r.Tags)
			out = append(out, r)
		}
	}
	slices.SortFunc(out, olderFirst)
	return out
}
