package delivery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/notification"
)

// Deliverer performs the channel specific part of a delivery.
type Deliverer interface {
	Deliver(ctx context.Context, item *notification.Item, msg *queue.Message) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, item *notification.Item, msg *queue.Message) error

func (f DelivererFunc) Deliver(ctx context.Context, item *notification.Item, msg *queue.Message) error {
	return f(ctx, item, msg)
}

// Handler is the queue.Handler of one channel.
type Handler struct {
	channel   notification.Channel
	loader    *Loader
	deliverer Deliverer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func NewHandler(channel notification.Channel, loader *Loader, d Deliverer, opts ...Option) *Handler {
	h := &Handler{
		channel:   channel,
		loader:    loader,
		deliverer: d,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle loads the item and delivers it. Permanent failures are logged and
// acknowledged; anything else is returned for redelivery.
func (h *Handler) Handle(ctx context.Context, msg *queue.Message) error {
	start := time.Now()
	log := h.logger.With(
		logger.Component("delivery"),
		logger.Channel(string(h.channel)),
		logger.Queue(msg.Queue),
		logger.SequenceNumber(msg.SequenceNumber),
		slog.String("transport_message_id", msg.MessageID),
	)

	item, err := h.loader.Load(ctx, msg)
	if err == nil {
		log = log.With(
			logger.Tenant(item.Tenant()),
			logger.CorrelationID(item.Xcv()),
			logger.MessageID(item.MessageID()),
		)
		err = h.deliverer.Deliver(ctx, item, msg)
	}

	elapsed := time.Since(start)
	switch {
	case err == nil:
		h.metrics.Delivery(string(h.channel), metrics.OutcomeSuccess, elapsed)
		log.LogAttrs(ctx, slog.LevelInfo, "delivered", logger.Duration(elapsed))
		return nil
	case errors.Is(err, ErrPermanent):
		h.metrics.Delivery(string(h.channel), metrics.OutcomeFailure, elapsed)
		log.LogAttrs(ctx, slog.LevelWarn, "delivery failed permanently", logger.Error(err))
		return nil
	default:
		h.metrics.Delivery(string(h.channel), metrics.OutcomeFailure, elapsed)
		log.LogAttrs(ctx, slog.LevelError, "delivery failed", logger.Error(err))
		return err
	}
}
