package status

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

type rowKey struct{ partition, row string }

// MemoryStore keeps status rows in process memory.
type MemoryStore struct {
	mu            sync.RWMutex
	emails        map[rowKey]EmailStatus
	notifications map[rowKey]NotificationStatus
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		emails:        make(map[rowKey]EmailStatus),
		notifications: make(map[rowKey]NotificationStatus),
		now:           time.Now,
	}
}

func (m *MemoryStore) LogEmailStatus(_ context.Context, s EmailStatus) error {
	if err := validKeys(s.PartitionKey, s.RowKey); err != nil {
		return err
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails[rowKey{s.PartitionKey, s.RowKey}] = s
	return nil
}

func (m *MemoryStore) LogNotificationStatus(_ context.Context, s NotificationStatus) error {
	if err := validKeys(s.PartitionKey, s.RowKey); err != nil {
		return err
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[rowKey{s.PartitionKey, s.RowKey}] = s
	return nil
}

// EmailStatuses returns the rows of partition ordered by row key.
func (m *MemoryStore) EmailStatuses(_ context.Context, partition string) ([]EmailStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []EmailStatus
	for k, v := range m.emails {
		if k.partition == partition {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b EmailStatus) int { return cmp.Compare(a.RowKey, b.RowKey) })
	return out, nil
}

// NotificationStatuses returns the rows of partition ordered by row key.
func (m *MemoryStore) NotificationStatuses(_ context.Context, partition string) ([]NotificationStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []NotificationStatus
	for k, v := range m.notifications {
		if k.partition == partition {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b NotificationStatus) int { return cmp.Compare(a.RowKey, b.RowKey) })
	return out, nil
}
