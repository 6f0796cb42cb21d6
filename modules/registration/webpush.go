package registration

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifyhub/handler"
	"github.com/dmitrymomot/notifyhub/pkg/binder"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/svc/webpushreg"
)

// WebPushService serves the browser subscription routes of the caller.
type WebPushService struct {
	svc          *webpushreg.Service
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewWebPushService(svc *webpushreg.Service, log *slog.Logger) *WebPushService {
	if log == nil {
		log = slog.Default()
	}
	return &WebPushService{
		svc:          svc,
		errorHandler: errorHandler(log.With(logger.Component("webpushreg-api"))),
	}
}

func (s *WebPushService) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, webpushreg.Subscription](binder.JSON(), binder.Validator()),
		handler.WithErrorHandler[handler.Context, webpushreg.Subscription](s.errorHandler),
	))
	r.Delete("/", handler.Wrap(s.delete,
		handler.WithBinders[handler.Context, webpushreg.Subscription](binder.JSON()),
		handler.WithErrorHandler[handler.Context, webpushreg.Subscription](s.errorHandler),
	))

	return r
}

// CreateResponse reports whether the subscription was new.
type CreateResponse struct {
	Created bool `json:"created"`
}

// DeleteResponse reports how many rows were removed.
type DeleteResponse struct {
	Removed int `json:"removed"`
}

func (s *WebPushService) list(ctx handler.Context, _ struct{}) handler.Response {
	alias, err := jwt.Alias(ctx)
	if err != nil {
		return fail(err)
	}
	regs, err := s.svc.List(ctx, alias)
	if err != nil {
		return fail(err)
	}
	if regs == nil {
		regs = []webpushreg.Registration{}
	}
	return handler.JSON(regs)
}

func (s *WebPushService) create(ctx handler.Context, sub webpushreg.Subscription) handler.Response {
	alias, err := jwt.Alias(ctx)
	if err != nil {
		return fail(err)
	}
	created, err := s.svc.Register(ctx, alias, sub)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(CreateResponse{Created: created})
}

func (s *WebPushService) delete(ctx handler.Context, sub webpushreg.Subscription) handler.Response {
	alias, err := jwt.Alias(ctx)
	if err != nil {
		return fail(err)
	}
	n, err := s.svc.Unregister(ctx, alias, sub)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(DeleteResponse{Removed: n})
}
