package queue_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/queue"
)

type MockWorkerRepository struct {
	mock.Mock
}

func (m *MockWorkerRepository) ClaimMessage(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*queue.Message, error) {
	args := m.Called(ctx, workerID, queues, lockDuration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Message), args.Error(1)
}

func (m *MockWorkerRepository) CompleteMessage(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWorkerRepository) FailMessage(ctx context.Context, id uuid.UUID, errorMsg string, retryAt time.Time) error {
	return m.Called(ctx, id, errorMsg, retryAt).Error(0)
}

func (m *MockWorkerRepository) MoveToDLQ(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWorkerRepository) ExtendLock(ctx context.Context, id uuid.UUID, duration time.Duration) error {
	return m.Called(ctx, id, duration).Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWorker(t *testing.T) {
	t.Parallel()

	_, err := queue.NewWorker(nil)
	assert.ErrorIs(t, err, queue.ErrRepositoryNil)

	w, err := queue.NewWorker(new(MockWorkerRepository))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Start(context.Background()), queue.ErrNoHandlers)
	assert.ErrorIs(t, w.Stop(), queue.ErrWorkerNotStarted)
	assert.ErrorIs(t, w.RegisterHandler("", queue.HandlerFunc(nil)), queue.ErrQueueNameEmpty)
}

func TestWorker_Queues(t *testing.T) {
	t.Parallel()

	w, err := queue.NewWorker(new(MockWorkerRepository))
	require.NoError(t, err)
	noop := queue.HandlerFunc(func(context.Context, *queue.Message) error { return nil })
	require.NoError(t, w.RegisterHandler("text", noop))
	require.NoError(t, w.RegisterHandler("mail", noop))

	assert.Equal(t, []string{"mail", "text"}, w.Queues())
}

func TestWorker_ProcessesMessagesEndToEnd(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStorage()
	t.Cleanup(func() { _ = store.Close() })

	sender, err := queue.NewSender(store)
	require.NoError(t, err)

	worker, err := queue.NewWorker(store,
		queue.WithPullInterval(10*time.Millisecond),
		queue.WithMaxConcurrentMessages(2),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)

	received := make(chan *queue.Message, 4)
	require.NoError(t, worker.RegisterHandler("mail", queue.HandlerFunc(func(_ context.Context, m *queue.Message) error {
		received <- m
		return nil
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, worker.Start(ctx))

	seq, err := sender.Send(ctx, "mail", queue.Envelope{
		MessageID:  "m-1",
		Properties: queue.Properties{"tenantId": "root"},
		Body:       []byte("hello"),
	})
	require.NoError(t, err)

	select {
	case m := <-received:
		assert.Equal(t, "m-1", m.MessageID)
		assert.Equal(t, "root", m.Properties.String("tenantId"))
		assert.Equal(t, []byte("hello"), m.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}

	require.NoError(t, worker.Stop())

	require.Eventually(t, func() bool {
		m, ok := store.Message(seq)
		return ok && m.Status == queue.StatusCompleted
	}, time.Second, 10*time.Millisecond)
}

func TestWorker_RedeliversUntilDeadLettered(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStorage()
	t.Cleanup(func() { _ = store.Close() })

	sender, err := queue.NewSender(store, queue.WithMaxDeliveries(3))
	require.NoError(t, err)

	worker, err := queue.NewWorker(store,
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithRedeliveryBackoff(0),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)

	var attempts atomic.Int32
	require.NoError(t, worker.RegisterHandler("text", queue.HandlerFunc(func(context.Context, *queue.Message) error {
		attempts.Add(1)
		return errors.New("provider unavailable")
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, worker.Start(ctx))

	_, err = sender.Send(ctx, "text", queue.Envelope{MessageID: "m-2"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(store.DeadLetters()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, worker.Stop())

	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, "provider unavailable", store.DeadLetters()[0].Error)
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	msg := &queue.Message{ID: uuid.New(), Queue: "mail", MessageID: "m-3", MaxDeliveries: 1}

	repo := new(MockWorkerRepository)
	repo.On("ClaimMessage", mock.Anything, mock.Anything, []string{"mail"}, mock.Anything).Return(msg, nil).Once()
	repo.On("ClaimMessage", mock.Anything, mock.Anything, []string{"mail"}, mock.Anything).Return(nil, queue.ErrNoMessageToClaim)
	repo.On("FailMessage", mock.Anything, msg.ID, "panic in handler: boom", mock.Anything).Return(nil).Once()
	dead := make(chan struct{})
	repo.On("MoveToDLQ", mock.Anything, msg.ID).Return(nil).Once().Run(func(mock.Arguments) { close(dead) })

	worker, err := queue.NewWorker(repo,
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithWorkerLogger(quietLogger()),
	)
	require.NoError(t, err)
	require.NoError(t, worker.RegisterHandler("mail", queue.HandlerFunc(func(context.Context, *queue.Message) error {
		panic("boom")
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, worker.Start(ctx))

	select {
	case <-dead:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not dead-lettered")
	}
	require.NoError(t, worker.Stop())
	repo.AssertExpectations(t)
}
