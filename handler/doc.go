// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a decoded request value and returns a Response.
// Wrap runs the configured binders (JSON decoding, validation), applies
// decorators and renders the result. Errors become JSON bodies of the form
// {"error":{"code":...,"message":...}} with a status derived from the error:
// binder.ValidationError maps to 400, HTTPError to its own code and anything
// else to 500.
//
//	http.Handle("/api/broadcast", handler.Wrap(h.broadcast,
//		handler.WithBinders[handler.Context, notification.Item](binder.JSON()),
//	))
package handler
