package queue

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements SenderRepository and WorkerRepository in process
// memory. Intended for tests and single-node development.
type MemoryStorage struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]*Message
	dlq      map[uuid.UUID]*DeadLetter
	bySeq    map[int64]uuid.UUID
	byStatus map[MessageStatus][]uuid.UUID
	lastSeq  int64

	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		messages: make(map[uuid.UUID]*Message),
		dlq:      make(map[uuid.UUID]*DeadLetter),
		bySeq:    make(map[int64]uuid.UUID),
		byStatus: make(map[MessageStatus][]uuid.UUID),
		done:     make(chan struct{}),
	}

	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationManager()

	return ms
}

// Close stops the background lock manager.
func (ms *MemoryStorage) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.lockTicker.Stop()
	})
	return nil
}

// CreateMessage implements SenderRepository.
func (ms *MemoryStorage) CreateMessage(ctx context.Context, msg *Message) (int64, error) {
	if msg == nil {
		return 0, errors.New("message cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.messages[msg.ID]; exists {
		return 0, fmt.Errorf("message with ID %s already exists", msg.ID)
	}

	ms.lastSeq++
	stored := cloneMessage(msg)
	stored.SequenceNumber = ms.lastSeq

	ms.messages[stored.ID] = stored
	ms.bySeq[stored.SequenceNumber] = stored.ID
	ms.byStatus[stored.Status] = append(ms.byStatus[stored.Status], stored.ID)

	return stored.SequenceNumber, nil
}

// CancelScheduled implements SenderRepository.
func (ms *MemoryStorage) CancelScheduled(ctx context.Context, queue string, sequenceNumber int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	id, ok := ms.bySeq[sequenceNumber]
	if !ok {
		return ErrMessageNotFound
	}
	msg := ms.messages[id]
	if msg == nil || msg.Queue != queue || msg.Status != StatusPending {
		return ErrMessageNotFound
	}

	ms.setStatus(msg, StatusCancelled)
	return nil
}

// ClaimMessage implements WorkerRepository. Messages are handed out in
// scheduled order, ties broken by sequence number.
func (ms *MemoryStorage) ClaimMessage(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Message
	for _, id := range ms.byStatus[StatusPending] {
		msg := ms.messages[id]
		if !slices.Contains(queues, msg.Queue) || msg.ScheduledAt.After(now) {
			continue
		}
		if best == nil ||
			msg.ScheduledAt.Before(best.ScheduledAt) ||
			(msg.ScheduledAt.Equal(best.ScheduledAt) && msg.SequenceNumber < best.SequenceNumber) {
			best = msg
		}
	}
	if best == nil {
		return nil, ErrNoMessageToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID
	ms.setStatus(best, StatusProcessing)

	return cloneMessage(best), nil
}

// CompleteMessage implements WorkerRepository.
func (ms *MemoryStorage) CompleteMessage(ctx context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	msg, err := ms.processing(id)
	if err != nil {
		return err
	}

	now := time.Now()
	msg.ProcessedAt = &now
	msg.LockedUntil = nil
	msg.LockedBy = nil
	ms.setStatus(msg, StatusCompleted)
	return nil
}

// FailMessage implements WorkerRepository.
func (ms *MemoryStorage) FailMessage(ctx context.Context, id uuid.UUID, errorMsg string, retryAt time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	msg, err := ms.processing(id)
	if err != nil {
		return err
	}

	msg.DeliveryCount++
	msg.Error = &errorMsg
	msg.LockedUntil = nil
	msg.LockedBy = nil

	if msg.DeliveryCount >= msg.MaxDeliveries {
		ms.setStatus(msg, StatusFailed)
		return nil
	}

	msg.ScheduledAt = retryAt
	ms.setStatus(msg, StatusPending)
	return nil
}

// MoveToDLQ implements WorkerRepository.
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	msg, ok := ms.messages[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}

	entry := &DeadLetter{
		ID:             uuid.New(),
		MessageRef:     msg.ID,
		SequenceNumber: msg.SequenceNumber,
		Queue:          msg.Queue,
		MessageID:      msg.MessageID,
		SessionID:      msg.SessionID,
		Properties:     maps.Clone(msg.Properties),
		Body:           slices.Clone(msg.Body),
		DeliveryCount:  msg.DeliveryCount,
		FailedAt:       time.Now(),
	}
	if msg.Error != nil {
		entry.Error = *msg.Error
	}
	ms.dlq[entry.ID] = entry

	ms.removeFromStatusIndex(id, msg.Status)
	delete(ms.bySeq, msg.SequenceNumber)
	delete(ms.messages, id)
	return nil
}

// ExtendLock implements WorkerRepository.
func (ms *MemoryStorage) ExtendLock(ctx context.Context, id uuid.UUID, duration time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	msg, err := ms.processing(id)
	if err != nil {
		return err
	}
	lockUntil := time.Now().Add(duration)
	msg.LockedUntil = &lockUntil
	return nil
}

// Message returns a copy of a stored message by sequence number.
func (ms *MemoryStorage) Message(sequenceNumber int64) (*Message, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	id, ok := ms.bySeq[sequenceNumber]
	if !ok {
		return nil, false
	}
	return cloneMessage(ms.messages[id]), true
}

// Messages returns copies of all messages on queue in sequence order.
func (ms *MemoryStorage) Messages(queue string) []*Message {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []*Message
	for _, msg := range ms.messages {
		if msg.Queue == queue {
			out = append(out, cloneMessage(msg))
		}
	}
	slices.SortFunc(out, func(a, b *Message) int {
		return cmp.Compare(a.SequenceNumber, b.SequenceNumber)
	})
	return out
}

// DeadLetters returns copies of dead-lettered messages.
func (ms *MemoryStorage) DeadLetters() []DeadLetter {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]DeadLetter, 0, len(ms.dlq))
	for _, d := range ms.dlq {
		out = append(out, *d)
	}
	return out
}

func (ms *MemoryStorage) processing(id uuid.UUID) (*Message, error) {
	msg, ok := ms.messages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if msg.Status != StatusProcessing {
		return nil, fmt.Errorf("message %s is not in processing state", id)
	}
	return msg, nil
}

func (ms *MemoryStorage) setStatus(msg *Message, status MessageStatus) {
	ms.removeFromStatusIndex(msg.ID, msg.Status)
	msg.Status = status
	ms.byStatus[status] = append(ms.byStatus[status], msg.ID)
}

func (ms *MemoryStorage) removeFromStatusIndex(id uuid.UUID, status MessageStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(v uuid.UUID) bool {
		return v == id
	})
}

// lockExpirationManager returns messages held by dead workers to pending.
func (ms *MemoryStorage) lockExpirationManager() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for _, id := range slices.Clone(ms.byStatus[StatusProcessing]) {
		msg := ms.messages[id]
		if msg.LockedUntil != nil && msg.LockedUntil.Before(now) {
			msg.LockedUntil = nil
			msg.LockedBy = nil
			ms.setStatus(msg, StatusPending)
		}
	}
}

func cloneMessage(msg *Message) *Message {
	c := *msg
	c.Properties = maps.Clone(msg.Properties)
	c.Body = slices.Clone(msg.Body)
	return &c
}
