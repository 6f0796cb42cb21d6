// Package webpushreg manages browser push subscriptions.
//
// Registrations are partitioned by user alias and carry a random row key.
// A user holds at most one registration per endpoint: registering an
// endpoint twice is a no-op, and unregistering removes every row with that
// endpoint. The web push worker removes rows whose subscription is gone.
package webpushreg
