// Package ratelimiter throttles API callers with a token bucket.
//
// Each key (the caller alias for the notification API) owns a bucket of
// Capacity tokens refilled by RefillRate every RefillInterval. Buckets live
// in a Store: MemoryStore for a single process, RedisStore when several
// API replicas must share the budget.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	if err != nil {
//		return err
//	}
//	r.Use(ratelimiter.Middleware(limiter, callerKey))
//
// A request with an empty key is not limited. Middleware answers 429 with
// Retry-After and X-RateLimit-* headers once a bucket is empty.
package ratelimiter
