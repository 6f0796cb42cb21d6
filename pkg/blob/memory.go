package blob

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryStorage is an in-process Storage. It is safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (m *MemoryStorage) Put(ctx context.Context, container, key string, data []byte, _ ...PutOption) error {
	path, err := ObjectPath(container, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.objects[path] = slices.Clone(data)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Get(ctx context.Context, container, key string) ([]byte, error) {
	path, err := ObjectPath(container, key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return slices.Clone(data), nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (m *MemoryStorage) Delete(ctx context.Context, container, key string) error {
	path, err := ObjectPath(container, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.objects, path)
	m.mu.Unlock()
	return nil
}

// List returns the keys in container starting with prefix, sorted.
func (m *MemoryStorage) List(ctx context.Context, container, prefix string) ([]string, error) {
	container = strings.Trim(container, "/")
	if container == "" {
		return nil, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := container + "/"
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for path := range m.objects {
		key, ok := strings.CutPrefix(path, base)
		if ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
