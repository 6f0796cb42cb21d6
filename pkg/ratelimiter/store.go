package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state per key.
type Store interface {
	// ConsumeTokens refills key's bucket for the elapsed time, then takes
	// tokens from it. A negative remaining count means the request is denied;
	// the tokens stay taken so that a caller hammering the API keeps waiting.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	Reset(ctx context.Context, key string) error
}

// refill returns the token count after the intervals elapsed since last,
// and the new refill reference time.
func refill(tokens int, last, now time.Time, config Config) (int, time.Time) {
	intervals := int64(now.Sub(last) / config.RefillInterval)
	if intervals <= 0 {
		return tokens, last
	}
	// Cap so a long idle key cannot overflow the multiplication.
	intervals = min(intervals, int64(config.Capacity/config.RefillRate+1))
	return min(tokens+int(intervals)*config.RefillRate, config.Capacity), now
}
