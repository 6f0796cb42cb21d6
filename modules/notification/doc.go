// Package notification exposes the broadcast and data-mapper endpoints.
//
// Every route expects the caller to be authenticated by jwt.Middleware and
// answers 400 with a JSON error body for any failure:
//
//	r.Route("/api", func(api chi.Router) {
//	    api.Use(jwt.Middleware(tokens, nil))
//	    api.Mount("/notifications", notification.NewService(orchestrator, statuses, log).Handle())
//	})
package notification
