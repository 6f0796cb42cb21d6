package pushreg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// Transport delivers a rendered native payload to one registration. It
// returns ErrRegistrationGone when the provider no longer knows the device.
type Transport interface {
	Deliver(ctx context.Context, reg Registration, payload string) error
}

// Hub sends native notifications to tagged registrations.
type Hub struct {
	registry  Registry
	transport Transport
	logger    *slog.Logger
}

func NewHub(registry Registry, transport Transport, l *slog.Logger) *Hub {
	if l == nil {
		l = slog.Default()
	}
	return &Hub{registry: registry, transport: transport, logger: l}
}

// SendNative delivers payload to every registration on platform carrying
// tag. Registrations the transport reports gone are deleted and do not count
// as failures. It returns the number of successful deliveries.
func (h *Hub) SendNative(ctx context.Context, platform Platform, payload, tag string) (int, error) {
	regs, err := h.registry.ByTag(ctx, tag)
	if err != nil {
		return 0, err
	}

	var (
		sent int
		errs []error
	)
	for _, reg := range regs {
		if reg.Platform != platform {
			continue
		}

		err := h.transport.Deliver(ctx, reg, payload)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrRegistrationGone):
			h.logger.InfoContext(ctx, "pruning gone push registration",
				slog.String("registration_id", reg.ID),
				slog.String("platform", string(platform)),
			)
			if err := h.registry.Delete(ctx, reg.ID); err != nil {
				errs = append(errs, err)
			}
		default:
			errs = append(errs, fmt.Errorf("registration %s: %w", reg.ID, err))
		}
	}

	if len(errs) > 0 {
		h.logger.WarnContext(ctx, "native push partially failed",
			slog.String("platform", string(platform)),
			logger.Errors(errs...),
		)
		return sent, errors.Join(append([]error{ErrDelivery}, errs...)...)
	}
	return sent, nil
}
