package notification

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifyhub/handler"
	"github.com/dmitrymomot/notifyhub/pkg/binder"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	domain "github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/render"
	"github.com/dmitrymomot/notifyhub/svc/status"
)

// Broadcaster fans a notification out to its channels. *broadcast.Orchestrator
// satisfies it.
type Broadcaster interface {
	Broadcast(ctx context.Context, item *domain.Item) (*domain.Response, error)
}

type Service struct {
	broadcaster  Broadcaster
	statuses     status.Reader
	logger       *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

// NewService builds the notification endpoints. statuses may be nil, in
// which case the status routes are not mounted.
func NewService(b Broadcaster, statuses status.Reader, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("notification-api"))
	logged := handler.LoggingErrorHandler[handler.Context](log)
	return &Service{
		broadcaster: b,
		statuses:    statuses,
		logger:      log,
		errorHandler: func(ctx handler.Context, err error) {
			logged(ctx, badRequest(err))
		},
	}
}

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/broadcast", handler.Wrap(s.broadcast,
		handler.WithBinders[handler.Context, domain.Item](binder.JSON(), binder.Validator()),
		handler.WithErrorHandler[handler.Context, domain.Item](s.errorHandler),
	))
	r.Post("/data-mapper", handler.Wrap(s.dataMapper,
		handler.WithBinders[handler.Context, DataMapperRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, DataMapperRequest](s.errorHandler),
	))

	if s.statuses != nil {
		r.Get("/status/email/{xcv}", handler.Wrap(s.emailStatuses,
			handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
		))
		r.Get("/status/{itemID}", handler.Wrap(s.notificationStatuses,
			handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
		))
	}

	return r
}

// broadcast answers 200 when every channel send succeeded and 400 with the
// same response body otherwise.
func (s *Service) broadcast(ctx handler.Context, item domain.Item) handler.Response {
	if item.TenantIdentifier == "" {
		if claims, ok := jwt.ClaimsFromContext(ctx); ok {
			item.TenantIdentifier = claims.TenantID
		}
	}

	resp, err := s.broadcaster.Broadcast(ctx, &item)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "broadcast rejected",
			logger.CorrelationID(item.Xcv()),
			logger.Error(err))
		return handler.JSONError(badRequest(err))
	}
	if !resp.ActionResult {
		return handler.JSONWithStatus(http.StatusBadRequest, resp)
	}
	return handler.JSON(resp)
}

// DataMapperRequest is the input of the data-mapper endpoint.
type DataMapperRequest struct {
	NotificationTypes []domain.Type       `json:"notificationTypes"`
	TemplateData      domain.TemplateData `json:"templateData"`
	TemplateContent   string              `json:"templateContent"`
}

func (s *Service) dataMapper(_ handler.Context, req DataMapperRequest) handler.Response {
	out, err := render.Render(req.NotificationTypes, req.TemplateData, req.TemplateContent)
	if err != nil {
		return handler.JSONError(badRequest(err))
	}
	return handler.Text(out)
}

func (s *Service) emailStatuses(ctx handler.Context, _ struct{}) handler.Response {
	xcv := chi.URLParam(ctx.Request(), "xcv")
	if xcv == "" {
		return handler.JSONError(badRequest(ErrMissingPartition))
	}
	rows, err := s.statuses.EmailStatuses(ctx, xcv)
	if err != nil {
		return handler.JSONError(badRequest(err))
	}
	if rows == nil {
		rows = []status.EmailStatus{}
	}
	return handler.JSON(rows)
}

func (s *Service) notificationStatuses(ctx handler.Context, _ struct{}) handler.Response {
	id := chi.URLParam(ctx.Request(), "itemID")
	if id == "" {
		return handler.JSONError(badRequest(ErrMissingPartition))
	}
	rows, err := s.statuses.NotificationStatuses(ctx, id)
	if err != nil {
		return handler.JSONError(badRequest(err))
	}
	if rows == nil {
		rows = []status.NotificationStatus{}
	}
	return handler.JSON(rows)
}
