package registration

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifyhub/handler"
	"github.com/dmitrymomot/notifyhub/pkg/binder"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/svc/pushreg"
)

// PushService serves the device push registration routes.
type PushService struct {
	svc          *pushreg.Service
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewPushService(svc *pushreg.Service, log *slog.Logger) *PushService {
	if log == nil {
		log = slog.Default()
	}
	return &PushService{
		svc:          svc,
		errorHandler: errorHandler(log.With(logger.Component("pushreg-api"))),
	}
}

func (s *PushService) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, string](optionalJSON()),
		handler.WithErrorHandler[handler.Context, string](s.errorHandler),
	))
	r.Put("/", handler.Wrap(s.upsert,
		handler.WithBinders[handler.Context, pushreg.DeviceRegistration](binder.JSON()),
		handler.WithErrorHandler[handler.Context, pushreg.DeviceRegistration](s.errorHandler),
	))
	r.Delete("/", handler.Wrap(s.delete,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	return r
}

func (s *PushService) list(ctx handler.Context, _ struct{}) handler.Response {
	regs, err := s.svc.List(ctx)
	if err != nil {
		return fail(err)
	}
	if regs == nil {
		regs = []pushreg.Registration{}
	}
	return handler.JSON(regs)
}

// create answers the registration id to use for the posted device handle.
func (s *PushService) create(ctx handler.Context, handle string) handler.Response {
	id, err := s.svc.CreateRegistrationID(ctx, handle)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(id)
}

func (s *PushService) upsert(ctx handler.Context, dr pushreg.DeviceRegistration) handler.Response {
	alias, err := jwt.Alias(ctx)
	if err != nil {
		return fail(err)
	}
	reg, err := s.svc.Upsert(ctx, alias, dr)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(reg)
}

func (s *PushService) delete(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.svc.Delete(ctx, ctx.Request().URL.Query().Get("id")); err != nil {
		return fail(err)
	}
	return handler.Status(http.StatusOK)
}
