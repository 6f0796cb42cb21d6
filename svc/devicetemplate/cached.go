package devicetemplate

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/cache"
)

// CachedStore serves ByType from an in-process LRU in front of another
// Store. Put writes through and drops the cached entry for that type.
type CachedStore struct {
	next  Store
	cache *cache.LRU[string, []Template]
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(next Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, cache: cache.NewLRU[string, []Template](size, ttl)}
}

func (s *CachedStore) ByType(ctx context.Context, deviceType string) ([]Template, error) {
	if cached, ok := s.cache.Get(deviceType); ok {
		return slices.Clone(cached), nil
	}
	templates, err := s.next.ByType(ctx, deviceType)
	if err != nil {
		return nil, err
	}
	s.cache.Put(deviceType, slices.Clone(templates))
	return templates, nil
}

func (s *CachedStore) Put(ctx context.Context, t Template) error {
	if err := s.next.Put(ctx, t); err != nil {
		return err
	}
	s.cache.Remove(t.DeviceType)
	return nil
}
