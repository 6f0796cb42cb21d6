package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
	"github.com/dmitrymomot/notifyhub/pkg/codec"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/reminder"
)

// Sender is the transport used by the Orchestrator. *queue.Sender
// satisfies it.
type Sender interface {
	Send(ctx context.Context, queue string, env queue.Envelope) (int64, error)
	Schedule(ctx context.Context, queue string, env queue.Envelope, at time.Time) (int64, error)
	CancelScheduled(ctx context.Context, queue string, sequenceNumber int64) error
}

// Orchestrator turns one notification into channel queue messages.
type Orchestrator struct {
	sender    Sender
	store     blob.Storage
	queues    Queues
	container string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	reminders *reminder.Tracker
	newID     func() string
}

func New(sender Sender, store blob.Storage, opts ...Option) (*Orchestrator, error) {
	if sender == nil {
		return nil, ErrSenderNil
	}
	if store == nil {
		return nil, ErrStorageNil
	}

	o := &Orchestrator{
		sender:    sender,
		store:     store,
		queues:    DefaultQueues(),
		container: notification.PayloadContainer,
		logger:    slog.Default(),
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Broadcast fans item out to its channel queues and reports the outcome.
// It returns an error only for input that can never be broadcast; transport
// and storage failures are reported in the response.
func (o *Orchestrator) Broadcast(ctx context.Context, item *notification.Item) (*notification.Response, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: nil notification item", notification.ErrInvalidData)
	}

	log := o.logger.With(
		logger.Component("broadcast"),
		logger.Tenant(item.Tenant()),
		logger.CorrelationID(item.Xcv()),
		logger.MessageID(item.MessageID()),
	)

	queues, err := o.targetQueues(item.NotificationTypes)
	if err != nil {
		return nil, err
	}

	if notification.HasType(item.NotificationTypes, notification.Cancel) {
		o.cancelReminder(ctx, log, item)
	}

	failures := make(map[string]string)

	if len(queues) == 0 {
		log.LogAttrs(ctx, slog.LevelInfo, "no applicable channels",
			logger.Event("ignored"))
		o.metrics.Broadcast(metrics.OutcomeIgnored)
		return notification.IgnoredResponse(item, failures), nil
	}

	ok := o.publish(ctx, log, item, queues, failures)
	if !ok {
		o.metrics.Broadcast(metrics.OutcomeFailure)
		return notification.FailureResponse(item, item.SequenceNumber, failures), nil
	}

	o.metrics.Broadcast(metrics.OutcomeSuccess)
	return notification.SuccessResponse(item, item.SequenceNumber), nil
}

// targetQueues maps types onto distinct queue names in first-seen order.
func (o *Orchestrator) targetQueues(types []notification.Type) ([]string, error) {
	channels := notification.Channels(types)
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		name, ok := o.queues[ch]
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %s", ErrNoQueue, ch)
		}
		out = append(out, name)
	}
	return out, nil
}

// publish offloads the payload and sends it to every queue. It reports
// whether every send succeeded.
func (o *Orchestrator) publish(ctx context.Context, log *slog.Logger, item *notification.Item, queues []string, failures map[string]string) bool {
	env := queue.Envelope{
		MessageID: o.messageID(item),
		SessionID: o.sessionID(item),
		Properties: queue.Properties{
			notification.PropertyTenantID:   item.Tenant(),
			notification.PropertyDataInBlob: true,
		},
	}
	log = log.With(slog.String("transport_message_id", env.MessageID))

	if err := o.offload(ctx, item, env.MessageID); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "payload offload failed", logger.Error(err))
		return false
	}

	ok := true
	for _, q := range queues {
		seq, err := o.send(ctx, q, env, item.SendOnUTCDate)
		o.metrics.QueueSend(q, err)
		if err != nil {
			ok = false
			failures[q] = errorText(err)
			log.LogAttrs(ctx, slog.LevelError, "queue send failed", logger.Queue(q), logger.Error(err))
			continue
		}
		item.SequenceNumber = seq
		log.LogAttrs(ctx, slog.LevelDebug, "queued", logger.Queue(q), logger.SequenceNumber(seq))
	}

	if reminder.Decide(ctx, item.Reminder) != reminder.Scheduled {
		log.LogAttrs(ctx, slog.LevelInfo, "reminder not scheduled", logger.Event("ignored"))
		return ok
	}

	rq := o.queues[notification.ChannelReminder]
	if rq == "" {
		failures[string(notification.ChannelReminder)] = ErrNoQueue.Error()
		log.LogAttrs(ctx, slog.LevelError, "reminder queue not configured")
		return false
	}

	at := item.Reminder.NextReminderDate
	seq, err := o.send(ctx, rq, env, &at)
	o.metrics.QueueSend(rq, err)
	if err != nil {
		failures[rq] = errorText(err)
		log.LogAttrs(ctx, slog.LevelError, "reminder schedule failed", logger.Queue(rq), logger.Error(err))
		return false
	}
	item.SequenceNumber = seq
	if o.reminders != nil {
		if err := o.reminders.Scheduled(ctx, seq, item.Reminder); err != nil {
			log.LogAttrs(ctx, slog.LevelWarn, "reminder tracking failed",
				logger.SequenceNumber(seq), logger.Error(err))
		}
	}
	log.LogAttrs(ctx, slog.LevelInfo, "reminder scheduled",
		logger.Queue(rq), logger.SequenceNumber(seq), slog.Time("at", at))
	return ok
}

func (o *Orchestrator) send(ctx context.Context, q string, env queue.Envelope, at *time.Time) (int64, error) {
	if at != nil && !at.IsZero() {
		return o.sender.Schedule(ctx, q, env, *at)
	}
	return o.sender.Send(ctx, q, env)
}

// offload stores the compressed item under {tenant}/{messageId}.
func (o *Orchestrator) offload(ctx context.Context, item *notification.Item, messageID string) error {
	item.AttachmentBlobName = notification.PayloadKey(item.Tenant(), messageID)

	raw, err := json.Marshal(item)
	if err != nil {
		return errors.Join(ErrOffload, err)
	}
	compressed, err := codec.Compress(raw)
	if err != nil {
		return errors.Join(ErrOffload, err)
	}
	if err := o.store.Put(ctx, o.container, item.AttachmentBlobName, compressed,
		blob.WithContentType("application/json"),
		blob.WithContentEncoding("gzip"),
	); err != nil {
		return errors.Join(ErrOffload, err)
	}
	return nil
}

// cancelReminder cancels the reminder scheduled under item.SequenceNumber.
// A cancel error is logged and never reaches the broadcast response.
func (o *Orchestrator) cancelReminder(ctx context.Context, log *slog.Logger, item *notification.Item) {
	rq := o.queues[notification.ChannelReminder]
	if item.SequenceNumber <= 0 || rq == "" {
		log.LogAttrs(ctx, slog.LevelInfo, "nothing to cancel",
			logger.Event("ignored"), logger.SequenceNumber(item.SequenceNumber))
		return
	}

	if o.reminders != nil {
		err := o.reminders.Cancel(ctx, item.SequenceNumber)
		if errors.Is(err, reminder.ErrAlreadyDelivered) {
			log.LogAttrs(ctx, slog.LevelInfo, "reminder already delivered",
				logger.Event("ignored"), logger.SequenceNumber(item.SequenceNumber))
			return
		}
		if err != nil {
			log.LogAttrs(ctx, slog.LevelWarn, "reminder tracking failed",
				logger.SequenceNumber(item.SequenceNumber), logger.Error(err))
		}
	}

	err := o.sender.CancelScheduled(ctx, rq, item.SequenceNumber)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelWarn, "reminder cancel failed",
			logger.Queue(rq), logger.SequenceNumber(item.SequenceNumber), logger.Error(err))
		return
	}
	log.LogAttrs(ctx, slog.LevelInfo, "reminder cancelled",
		logger.Queue(rq), logger.SequenceNumber(item.SequenceNumber))
}

func (o *Orchestrator) messageID(item *notification.Item) string {
	if id := item.MessageID(); id != "" {
		return id + "_" + o.newID()
	}
	return o.newID()
}

func (o *Orchestrator) sessionID(item *notification.Item) string {
	if xcv := item.Xcv(); xcv != "" {
		return xcv
	}
	return o.newID()
}

// errorText returns the message of the innermost cause of err.
func errorText(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errorText(errs[len(errs)-1])
		}
	}
	return err.Error()
}
