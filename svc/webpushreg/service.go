package webpushreg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/svc/notification"
)

// Service applies the registration rules on top of a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the registrations of alias.
func (s *Service) List(ctx context.Context, alias string) ([]Registration, error) {
	if alias == "" {
		return nil, fmt.Errorf("%w: %w", notification.ErrInvalidData, ErrMissingAlias)
	}
	return s.store.List(ctx, alias)
}

// Register stores sub for alias. It reports false when alias already had a
// registration for the same endpoint.
func (s *Service) Register(ctx context.Context, alias string, sub Subscription) (bool, error) {
	if alias == "" {
		return false, fmt.Errorf("%w: %w", notification.ErrInvalidData, ErrMissingAlias)
	}
	if err := sub.validate(); err != nil {
		return false, err
	}

	created, err := s.store.InsertIfAbsent(ctx, Registration{
		UserAlias:      alias,
		RowKey:         uuid.NewString(),
		Endpoint:       sub.Endpoint,
		ExpirationTime: sub.expiration(),
		Auth:           sub.Keys.Auth,
		P256DH:         sub.Keys.P256DH,
	})
	if err != nil {
		return false, err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "web push registration",
		logger.Component("webpushreg"),
		slog.String("alias", alias),
		slog.Bool("created", created))
	return created, nil
}

// Unregister removes every registration of alias for the subscription
// endpoint and returns how many were removed.
func (s *Service) Unregister(ctx context.Context, alias string, sub Subscription) (int, error) {
	if alias == "" {
		return 0, fmt.Errorf("%w: %w", notification.ErrInvalidData, ErrMissingAlias)
	}
	if sub.Endpoint == "" {
		return 0, fmt.Errorf("%w: %w: endpoint is required", notification.ErrInvalidData, ErrInvalidSubscription)
	}
	return s.store.DeleteByEndpoint(ctx, alias, sub.Endpoint)
}

// Remove deletes a single registration; used when its subscription is gone.
func (s *Service) Remove(ctx context.Context, r Registration) error {
	return s.store.Delete(ctx, r.UserAlias, r.RowKey)
}
