package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// WorkerRepository defines the storage operations a Worker needs.
type WorkerRepository interface {
	// ClaimMessage atomically locks the next due message on one of queues.
	// Returns ErrNoMessageToClaim when nothing is due.
	ClaimMessage(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Message, error)

	// CompleteMessage marks a message as processed.
	CompleteMessage(ctx context.Context, id uuid.UUID) error

	// FailMessage records a failed delivery and makes the message visible
	// again at retryAt unless its delivery budget is spent.
	FailMessage(ctx context.Context, id uuid.UUID, errorMsg string, retryAt time.Time) error

	// MoveToDLQ moves a message to the dead letter queue.
	MoveToDLQ(ctx context.Context, id uuid.UUID) error

	// ExtendLock extends the lock on a long-running message.
	ExtendLock(ctx context.Context, id uuid.UUID, duration time.Duration) error
}

// Worker consumes messages from the queues it has handlers for.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex

	pullInterval      time.Duration
	lockTimeout       time.Duration
	redeliveryBackoff time.Duration
	logger            *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// NewWorker creates a new queue worker.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		pullInterval:          time.Second,
		lockTimeout:           5 * time.Minute,
		maxConcurrentMessages: 1,
		redeliveryBackoff:     30 * time.Second,
		logger:                slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:              repo,
		handlers:          make(map[string]Handler),
		workerID:          uuid.New(),
		sem:               make(chan struct{}, options.maxConcurrentMessages),
		pullInterval:      options.pullInterval,
		lockTimeout:       options.lockTimeout,
		redeliveryBackoff: options.redeliveryBackoff,
		logger:            options.logger,
	}, nil
}

// RegisterHandler binds a handler to a queue, replacing any previous one.
func (w *Worker) RegisterHandler(queue string, handler Handler) error {
	if queue == "" {
		return ErrQueueNameEmpty
	}
	if handler == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[queue] = handler
	return nil
}

// Queues returns the queues the worker consumes, sorted.
func (w *Worker) Queues() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	queues := make([]string, 0, len(w.handlers))
	for q := range w.handlers {
		queues = append(queues, q)
	}
	slices.Sort(queues)
	return queues
}

// Start begins consuming in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerStarted
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("queue worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("queues", w.Queues()),
		slog.Int("max_concurrent", cap(w.sem)))
	return nil
}

// Stop cancels polling and waits for in-flight messages.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrWorkerNotStarted
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("queue worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

// Run starts the worker and returns a function suitable for errgroup.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	queues := w.Queues()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.fillSlots(queues)
		}
	}
}

// fillSlots claims messages until every slot is busy or nothing is due.
func (w *Worker) fillSlots(queues []string) {
	for {
		select {
		case w.sem <- struct{}{}:
		default:
			return
		}

		msg, err := w.repo.ClaimMessage(w.ctx, w.workerID, queues, w.lockTimeout)
		if err != nil {
			<-w.sem
			if !errors.Is(err, ErrNoMessageToClaim) && !errors.Is(err, context.Canceled) {
				w.logger.Error("failed to claim message",
					slog.String("worker_id", w.workerID.String()),
					slog.String("error", err.Error()))
			}
			return
		}

		w.stopMu.Lock()
		if w.stopping.Load() {
			w.stopMu.Unlock()
			<-w.sem
			return
		}
		w.wg.Add(1)
		w.stopMu.Unlock()

		go func(msg *Message) {
			defer w.wg.Done()
			defer func() { <-w.sem }()

			if err := w.process(msg); err != nil {
				w.logger.Error("failed to settle message",
					slog.String("worker_id", w.workerID.String()),
					slog.String("message_id", msg.MessageID),
					slog.String("error", err.Error()))
			}
		}(msg)
	}
}

// process runs the queue handler and settles the message.
func (w *Worker) process(msg *Message) (retErr error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panicked",
				slog.String("worker_id", w.workerID.String()),
				slog.String("queue", msg.Queue),
				slog.String("message_id", msg.MessageID),
				slog.Any("panic", r))
			retErr = w.handleFailure(msg, fmt.Errorf("panic in handler: %v", r), time.Since(start))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[msg.Queue]
	w.mu.RUnlock()
	if !ok {
		return w.handleMissingHandler(msg)
	}

	// Not derived from w.ctx so that Stop lets in-flight deliveries finish.
	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	if err := handler.Handle(ctx, msg); err != nil {
		return w.handleFailure(msg, err, time.Since(start))
	}
	return w.handleSuccess(msg, time.Since(start))
}

// handleMissingHandler dead-letters immediately, redelivery cannot help.
func (w *Worker) handleMissingHandler(msg *Message) error {
	w.logger.Error("no handler registered for queue",
		slog.String("worker_id", w.workerID.String()),
		slog.String("queue", msg.Queue),
		slog.String("message_id", msg.MessageID))

	if err := w.repo.FailMessage(context.Background(), msg.ID, ErrHandlerNotFound.Error(), time.Now()); err != nil {
		return errors.Join(ErrFailedToUpdateStatus, err)
	}
	if err := w.repo.MoveToDLQ(context.Background(), msg.ID); err != nil {
		return errors.Join(ErrFailedToMoveToDLQ, err)
	}
	return nil
}

func (w *Worker) handleFailure(msg *Message, execErr error, duration time.Duration) error {
	deliveries := msg.DeliveryCount + 1

	w.logger.Warn("message delivery failed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("queue", msg.Queue),
		slog.String("message_id", msg.MessageID),
		slog.Int64("sequence_number", msg.SequenceNumber),
		slog.Int("delivery_count", int(deliveries)),
		slog.Int("max_deliveries", int(msg.MaxDeliveries)),
		slog.Duration("duration", duration),
		slog.String("error", execErr.Error()))

	retryAt := time.Now().Add(time.Duration(deliveries) * w.redeliveryBackoff)
	ctx := context.Background()
	if err := w.repo.FailMessage(ctx, msg.ID, execErr.Error(), retryAt); err != nil {
		return errors.Join(ErrFailedToUpdateStatus, err)
	}

	if deliveries >= msg.MaxDeliveries {
		if err := w.repo.MoveToDLQ(ctx, msg.ID); err != nil {
			return errors.Join(ErrFailedToMoveToDLQ, err)
		}
		w.logger.Warn("message moved to dead letter queue",
			slog.String("worker_id", w.workerID.String()),
			slog.String("queue", msg.Queue),
			slog.String("message_id", msg.MessageID))
	}
	return nil
}

func (w *Worker) handleSuccess(msg *Message, duration time.Duration) error {
	if err := w.repo.CompleteMessage(context.Background(), msg.ID); err != nil {
		return errors.Join(ErrFailedToUpdateStatus, err)
	}

	w.logger.Debug("message completed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("queue", msg.Queue),
		slog.String("message_id", msg.MessageID),
		slog.Duration("duration", duration))
	return nil
}

// ExtendLock extends the lock on a message still being processed.
func (w *Worker) ExtendLock(ctx context.Context, id uuid.UUID, extension time.Duration) error {
	return w.repo.ExtendLock(ctx, id, extension)
}
