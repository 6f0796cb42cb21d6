// Package webhook posts JSON payloads to outbound HTTP endpoints.
//
// Client retries transport failures and the statuses accepted by its
// RetryPolicy (404, 408, 429 and 5xx by default) with exponential backoff
// and at most three retries. Bodies can be signed with HMAC-SHA256 and a
// per-host CircuitBreaker can short-circuit calls to endpoints that keep
// failing.
//
//	c := webhook.NewClient(webhook.WithSigningSecret(secret))
//	resp, err := c.PostJSON(ctx, endpoint, payload)
//	if resp.OK() { ... }
package webhook
