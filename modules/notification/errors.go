package notification

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/notifyhub/handler"
	"github.com/dmitrymomot/notifyhub/pkg/binder"
)

var ErrMissingPartition = errors.New("missing status partition")

// badRequest turns any failure other than a validation or auth error into
// a 400 that keeps err in its chain.
func badRequest(err error) error {
	var (
		httpErr handler.HTTPError
		valErr  binder.ValidationError
	)
	if errors.As(err, &valErr) {
		return err
	}
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnauthorized {
		return err
	}
	return errors.Join(handler.ErrBadRequest.WithMessage(err.Error()), err)
}
