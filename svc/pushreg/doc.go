// Package pushreg manages native device push registrations and delivers
// native notifications to them.
//
// A registration binds a device handle on one platform (mpns, wns, apns,
// fcm) to a set of tags. Every tag must contain the owning user's alias, so
// a caller can only register devices for themselves. Registration ids are
// minted by the Registry; an upsert for an id the registry no longer knows
// fails with ErrRegistrationGone.
//
// CreateRegistrationID converges on one registration per device handle: the
// first existing registration wins and duplicates are deleted. Concurrent
// calls for the same handle can still race; the convergence is best-effort.
//
// Hub sends a native payload to all registrations with a given tag on a
// given platform through a Transport and prunes registrations the transport
// reports as gone.
package pushreg
