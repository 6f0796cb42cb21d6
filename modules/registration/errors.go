package registration

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifyhub/handler"
	"github.com/dmitrymomot/notifyhub/pkg/binder"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
)

// fail maps err onto the response status: auth failures are 401,
// everything else is 400.
func fail(err error) handler.Response {
	var (
		httpErr handler.HTTPError
		valErr  binder.ValidationError
	)
	switch {
	case errors.Is(err, jwt.ErrMissingToken), errors.Is(err, jwt.ErrMissingAlias):
		return handler.JSONError(errors.Join(handler.ErrUnauthorized, err))
	case errors.As(err, &valErr):
		return handler.JSONError(err)
	case errors.As(err, &httpErr) && httpErr.Code == http.StatusUnauthorized:
		return handler.JSONError(err)
	}
	return handler.JSONError(errors.Join(handler.ErrBadRequest.WithMessage(err.Error()), err))
}

// errorHandler renders binder failures as 400.
func errorHandler(log *slog.Logger) handler.ErrorHandler[handler.Context] {
	logged := handler.LoggingErrorHandler[handler.Context](log)
	return func(ctx handler.Context, err error) {
		if errors.As(err, new(binder.ValidationError)) {
			logged(ctx, err)
			return
		}
		logged(ctx, errors.Join(handler.ErrBadRequest.WithMessage(err.Error()), err))
	}
}

// optionalJSON decodes a JSON body and leaves v untouched when the body is
// empty.
func optionalJSON() handler.Bind {
	decode := binder.JSON()
	return func(r *http.Request, v any) error {
		if err := decode(r, v); err != nil && !errors.Is(err, binder.ErrEmptyBody) {
			return err
		}
		return nil
	}
}
