package pushreg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/svc/notification"
)

// handleLookupLimit caps how many registrations CreateRegistrationID
// inspects for one handle.
const handleLookupLimit = 100

// Service implements the registration operations exposed over HTTP.
type Service struct {
	registry Registry
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(registry Registry, opts ...Option) *Service {
	s := &Service{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every registration.
func (s *Service) List(ctx context.Context) ([]Registration, error) {
	return s.registry.List(ctx)
}

// CreateRegistrationID returns the id of the oldest registration for handle,
// deleting any others, or mints a new id when handle has none. An empty
// handle always mints.
func (s *Service) CreateRegistrationID(ctx context.Context, handle string) (string, error) {
	if handle == "" {
		return s.registry.NewID(ctx)
	}

	regs, err := s.registry.ByHandle(ctx, handle, handleLookupLimit)
	if err != nil {
		return "", err
	}
	if len(regs) == 0 {
		return s.registry.NewID(ctx)
	}

	keep := regs[0].ID
	for _, dup := range regs[1:] {
		if err := s.registry.Delete(ctx, dup.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete duplicate push registration",
				slog.String("registration_id", dup.ID),
				logger.Error(err),
			)
		}
	}
	return keep, nil
}

// Upsert stores dr for the caller identified by alias. Every tag must
// contain alias.
func (s *Service) Upsert(ctx context.Context, alias string, dr DeviceRegistration) (*Registration, error) {
	reg, err := validate(alias, dr)
	if err != nil {
		return nil, err
	}

	if err := s.registry.Upsert(ctx, reg); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "push registration stored",
		slog.String("registration_id", reg.ID),
		slog.String("platform", string(reg.Platform)),
	)
	return &reg, nil
}

// Delete removes a registration.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.Join(notification.ErrInvalidData, ErrMissingID)
	}
	return s.registry.Delete(ctx, id)
}

func validate(alias string, dr DeviceRegistration) (Registration, error) {
	invalid := func(err error) (Registration, error) {
		return Registration{}, errors.Join(notification.ErrInvalidData, err)
	}

	if alias == "" {
		return invalid(ErrMissingAlias)
	}
	if dr.ID == "" {
		return invalid(ErrMissingID)
	}
	if dr.Handle == "" {
		return invalid(ErrMissingHandle)
	}
	platform, err := ParsePlatform(dr.Platform)
	if err != nil {
		return invalid(err)
	}
	for _, tag := range dr.Tags {
		if !strings.Contains(tag, alias) {
			return invalid(fmt.Errorf("%w: %q", ErrTagOwnership, tag))
		}
	}

	return Registration{
		ID:       dr.ID,
		Platform: platform,
		Handle:   dr.Handle,
		Tags:     slices.Compact(slices.Sorted(slices.Values(dr.Tags))),
	}, nil
}
