package broadcast

import (
	"log/slog"
	"maps"

	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/reminder"
)

// Queues maps each channel onto its queue name.
type Queues map[notification.Channel]string

// DefaultQueues returns the default queue names.
func DefaultQueues() Queues {
	return Queues{
		notification.ChannelMail:       "mail",
		notification.ChannelDevicePush: "devicepush",
		notification.ChannelWebPush:    "webpush",
		notification.ChannelText:       "text",
		notification.ChannelCustom:     "custom",
		notification.ChannelReminder:   "reminders",
	}
}

type Option func(*Orchestrator)

// WithQueues overrides queue names. Channels missing from q keep their
// default name.
func WithQueues(q Queues) Option {
	return func(o *Orchestrator) {
		maps.Copy(o.queues, q)
	}
}

// WithContainer sets the blob container for offloaded payloads.
func WithContainer(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.container = name
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithReminderTracker records reminder lifecycle changes so that a cancel
// can stop a reminder the transport already handed to a worker.
func WithReminderTracker(t *reminder.Tracker) Option {
	return func(o *Orchestrator) { o.reminders = t }
}

// WithIDGenerator replaces the random id source used for message and
// session ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}
