package delivery

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/devicetemplate"
	"github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/pushreg"
	"github.com/dmitrymomot/notifyhub/svc/render"
)

// NativeSender sends a native payload to the registrations carrying tag.
// *pushreg.Hub satisfies it.
type NativeSender interface {
	SendNative(ctx context.Context, platform pushreg.Platform, payload, tag string) (int, error)
}

// DevicePushDeliverer renders device templates and sends them to the
// recipient's devices. It is best-effort: failures are logged and the
// delivery always completes.
type DevicePushDeliverer struct {
	templates devicetemplate.Store
	hub       NativeSender
	logger    *slog.Logger
}

func NewDevicePushDeliverer(templates devicetemplate.Store, hub NativeSender, l *slog.Logger) *DevicePushDeliverer {
	if l == nil {
		l = slog.Default()
	}
	return &DevicePushDeliverer{templates: templates, hub: hub, logger: l}
}

func (d *DevicePushDeliverer) Deliver(ctx context.Context, item *notification.Item, _ *queue.Message) error {
	for _, t := range item.NotificationTypes {
		if !t.IsDevice() {
			continue
		}
		d.deliverType(ctx, item, t)
	}
	return nil
}

func (d *DevicePushDeliverer) deliverType(ctx context.Context, item *notification.Item, t notification.Type) {
	tag := item.To + string(t)
	log := d.logger.With(slog.String("device_type", string(t)), slog.String("tag", tag))

	templates, err := d.templates.ByType(ctx, string(t))
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "device templates not loaded", logger.Error(err))
		return
	}
	if len(templates) == 0 {
		log.LogAttrs(ctx, slog.LevelWarn, "no device templates", logger.Event("ignored"))
		return
	}

	for _, tpl := range templates {
		platform, err := pushreg.ParsePlatform(tpl.Platform)
		if err != nil {
			log.LogAttrs(ctx, slog.LevelWarn, "skipping template", logger.Error(err))
			continue
		}

		payload, err := render.Render(nil, item.TemplateData, tpl.Content)
		if err != nil {
			log.LogAttrs(ctx, slog.LevelError, "device template render failed",
				slog.String("platform", tpl.Platform), logger.Error(err))
			continue
		}

		sent, err := d.hub.SendNative(ctx, platform, payload, tag)
		if err != nil {
			log.LogAttrs(ctx, slog.LevelError, "native push failed",
				slog.String("platform", tpl.Platform), slog.Int("sent", sent), logger.Error(err))
			continue
		}
		log.LogAttrs(ctx, slog.LevelDebug, "native push sent",
			slog.String("platform", tpl.Platform), slog.Int("sent", sent))
	}
}
