package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/webhook"
	"github.com/dmitrymomot/notifyhub/svc/notification"
)

// Poster is the subset of webhook.Client the deliverers use.
type Poster interface {
	PostJSON(ctx context.Context, endpoint string, data any) (*webhook.Response, error)
}

// post sends data and classifies the outcome: a final non-2xx answer wraps
// ErrPermanent, a transport failure is returned as is.
func post(ctx context.Context, p Poster, endpoint string, data any) (*webhook.Response, error) {
	resp, err := p.PostJSON(ctx, endpoint, data)
	if err == nil {
		return resp, nil
	}
	if resp != nil && !resp.OK() {
		return resp, errors.Join(ErrPermanent, fmt.Errorf("%w: %s answered %d", ErrUnexpectedStatus, endpoint, resp.StatusCode))
	}
	if errors.Is(err, webhook.ErrInvalidURL) || errors.Is(err, webhook.ErrInvalidPayload) {
		return resp, errors.Join(ErrPermanent, err)
	}
	return resp, err
}

// WebhookDeliverer forwards the whole item to one or more endpoints. Every
// endpoint is attempted; failures are logged and never fail the delivery.
type WebhookDeliverer struct {
	client    Poster
	endpoints []string
	channel   notification.Channel
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewTextDeliverer posts items to the text (SMS) gateway.
func NewTextDeliverer(client Poster, endpoint string, l *slog.Logger, m *metrics.Metrics) *WebhookDeliverer {
	return newWebhookDeliverer(client, SplitEndpoints(endpoint), notification.ChannelText, l, m)
}

// NewCustomDeliverer posts items to every endpoint of a ';' separated list.
func NewCustomDeliverer(client Poster, endpoints string, l *slog.Logger, m *metrics.Metrics) *WebhookDeliverer {
	return newWebhookDeliverer(client, SplitEndpoints(endpoints), notification.ChannelCustom, l, m)
}

func newWebhookDeliverer(client Poster, endpoints []string, ch notification.Channel, l *slog.Logger, m *metrics.Metrics) *WebhookDeliverer {
	if l == nil {
		l = slog.Default()
	}
	return &WebhookDeliverer{client: client, endpoints: endpoints, channel: ch, logger: l, metrics: m}
}

// SplitEndpoints splits a ';' separated endpoint list.
func SplitEndpoints(list string) []string {
	var out []string
	for _, e := range strings.Split(list, ";") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (d *WebhookDeliverer) Deliver(ctx context.Context, item *notification.Item, _ *queue.Message) error {
	if len(d.endpoints) == 0 {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "no webhook endpoint configured",
			logger.Channel(string(d.channel)), logger.Event("ignored"))
		return nil
	}

	for _, endpoint := range d.endpoints {
		resp, err := post(ctx, d.client, endpoint, item)
		if err != nil {
			d.metrics.DeliveryOutcome(string(d.channel), metrics.OutcomeFailure)
			attrs := []slog.Attr{logger.Channel(string(d.channel)), slog.String("endpoint", endpoint), logger.Error(err)}
			if resp != nil {
				attrs = append(attrs, slog.Int("status", resp.StatusCode))
			}
			d.logger.LogAttrs(ctx, slog.LevelError, "webhook delivery failed", attrs...)
			continue
		}
		d.logger.LogAttrs(ctx, slog.LevelDebug, "webhook delivered",
			logger.Channel(string(d.channel)), slog.String("endpoint", endpoint), slog.Int("status", resp.StatusCode))
	}
	return nil
}
