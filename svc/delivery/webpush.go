package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/webpushreg"
)

// WebPushTTL is how long push services keep an undelivered message, in
// seconds.
const WebPushTTL = 2419200

// Subscriptions is the registration store view used by WebPushDeliverer.
// *webpushreg.Service satisfies it.
type Subscriptions interface {
	List(ctx context.Context, alias string) ([]webpushreg.Registration, error)
	Remove(ctx context.Context, r webpushreg.Registration) error
}

// VAPIDConfig holds the application server key pair.
type VAPIDConfig struct {
	PublicKey  string `env:"VAPID_PUBLIC_KEY"`
	PrivateKey string `env:"VAPID_PRIVATE_KEY"`
}

type webPushPayload struct {
	Tenant   string `json:"tenant"`
	Body     string `json:"body"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Tag      string `json:"tag"`
	Renotify bool   `json:"renotify"`
}

// WebPushDeliverer sends to every subscription of the recipient. A gone
// subscription is deleted; other per-subscription failures are logged and
// do not stop the remaining sends.
type WebPushDeliverer struct {
	subs    Subscriptions
	vapid   VAPIDConfig
	client  webpush.HTTPClient
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type WebPushOption func(*WebPushDeliverer)

func WithHTTPClient(c webpush.HTTPClient) WebPushOption {
	return func(d *WebPushDeliverer) {
		if c != nil {
			d.client = c
		}
	}
}

func WithWebPushLogger(l *slog.Logger) WebPushOption {
	return func(d *WebPushDeliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithWebPushMetrics(m *metrics.Metrics) WebPushOption {
	return func(d *WebPushDeliverer) { d.metrics = m }
}

func NewWebPushDeliverer(subs Subscriptions, vapid VAPIDConfig, opts ...WebPushOption) *WebPushDeliverer {
	d := &WebPushDeliverer{
		subs:   subs,
		vapid:  vapid,
		client: http.DefaultClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *WebPushDeliverer) Deliver(ctx context.Context, item *notification.Item, _ *queue.Message) error {
	regs, err := d.subs.List(ctx, item.To)
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		d.logger.LogAttrs(ctx, slog.LevelInfo, "no web push subscriptions", logger.Event("ignored"))
		return nil
	}

	payload, err := json.Marshal(webPushPayload{
		Tenant:   item.ApplicationName,
		Body:     item.Body,
		Title:    item.Subject,
		URL:      item.DeeplinkURL,
		Tag:      item.WebPushNotificationTag,
		Renotify: true,
	})
	if err != nil {
		return errors.Join(ErrPermanent, err)
	}

	for _, reg := range regs {
		d.send(ctx, item.To, reg, payload)
	}
	return nil
}

func (d *WebPushDeliverer) send(ctx context.Context, subscriber string, reg webpushreg.Registration, payload []byte) {
	log := d.logger.With(slog.String("row_key", reg.RowKey))

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: reg.Endpoint,
		Keys:     webpush.Keys{Auth: reg.Auth, P256dh: reg.P256DH},
	}, &webpush.Options{
		HTTPClient:      d.client,
		Subscriber:      subscriber,
		TTL:             WebPushTTL,
		VAPIDPublicKey:  d.vapid.PublicKey,
		VAPIDPrivateKey: d.vapid.PrivateKey,
	})
	if err != nil {
		d.metrics.DeliveryOutcome(string(notification.ChannelWebPush), metrics.OutcomeFailure)
		log.LogAttrs(ctx, slog.LevelError, "web push failed", logger.Error(err))
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode == http.StatusGone:
		d.metrics.DeliveryOutcome(string(notification.ChannelWebPush), metrics.OutcomeGone)
		if err := d.subs.Remove(ctx, reg); err != nil {
			log.LogAttrs(ctx, slog.LevelError, "gone subscription not removed", logger.Error(err))
			return
		}
		log.LogAttrs(ctx, slog.LevelInfo, "removed gone subscription")
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		log.LogAttrs(ctx, slog.LevelDebug, "web push sent", slog.Int("status", resp.StatusCode))
	default:
		d.metrics.DeliveryOutcome(string(notification.ChannelWebPush), metrics.OutcomeFailure)
		log.LogAttrs(ctx, slog.LevelError, "web push rejected",
			logger.Error(fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)))
	}
}
