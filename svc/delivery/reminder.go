package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/reminder"
	"github.com/dmitrymomot/notifyhub/svc/status"
)

// ReminderDeliverer re-submits the reminder copy of an item to the
// broadcast endpoint and records the outcome.
type ReminderDeliverer struct {
	client   Poster
	endpoint string
	status   status.Logger
	tracker  *reminder.Tracker
	logger   *slog.Logger
}

type ReminderOption func(*ReminderDeliverer)

// WithTracker skips reminders cancelled after they were handed to the
// worker and marks delivered ones.
func WithTracker(t *reminder.Tracker) ReminderOption {
	return func(d *ReminderDeliverer) { d.tracker = t }
}

func WithReminderLogger(l *slog.Logger) ReminderOption {
	return func(d *ReminderDeliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

func NewReminderDeliverer(client Poster, broadcastURL string, st status.Logger, opts ...ReminderOption) *ReminderDeliverer {
	d := &ReminderDeliverer{client: client, endpoint: broadcastURL, status: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *ReminderDeliverer) Deliver(ctx context.Context, item *notification.Item, msg *queue.Message) error {
	if d.endpoint == "" {
		return errors.Join(ErrPermanent, ErrNoEndpoint)
	}

	if d.tracker != nil {
		st, err := d.tracker.State(ctx, msg.SequenceNumber)
		if err != nil {
			return err
		}
		if st == reminder.Cancelled || st == reminder.Delivered {
			d.logger.LogAttrs(ctx, slog.LevelInfo, "reminder dropped",
				logger.Event("ignored"), slog.String("state", string(st)))
			return nil
		}
	}

	resp, err := post(ctx, d.client, d.endpoint, item.ReminderCopy())
	if err != nil {
		return err
	}

	var out notification.Response
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return errors.Join(ErrPermanent, ErrUnexpectedStatus, err)
	}

	if d.tracker != nil {
		if ok, err := d.tracker.Deliver(ctx, msg.SequenceNumber); err != nil || !ok {
			d.logger.LogAttrs(ctx, slog.LevelWarn, "reminder delivered while cancelled",
				logger.SequenceNumber(msg.SequenceNumber), logger.Error(err))
		}
	}

	row := status.NotificationStatus{
		PartitionKey:     item.ID,
		RowKey:           item.MessageID(),
		TenantIdentifier: out.TenantIdentifier,
		ActionResult:     out.ActionResult,
		MessageID:        item.MessageID(),
		Xcv:              item.Xcv(),
		SequenceNumber:   out.SequenceNumber,
	}
	if err := d.status.LogNotificationStatus(ctx, row); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "reminder status not recorded", logger.Error(err))
	}
	return nil
}
