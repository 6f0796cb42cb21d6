package registration

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions selects which registration services to mount. Each one is
// optional.
type RouterOptions struct {
	Push    Mountable
	WebPush Mountable
}

// Router mounts push routes under /push and web-push routes under /webpush.
//
// Example:
//
//	r.Mount("/registrations", registration.Router(registration.RouterOptions{
//	    Push:    registration.NewPushService(pushSvc, log),
//	    WebPush: registration.NewWebPushService(webPushSvc, log),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	if opts.Push != nil {
		r.Mount("/push", opts.Push.Handle())
	}
	if opts.WebPush != nil {
		r.Mount("/webpush", opts.WebPush.Handle())
	}
	return r
}
