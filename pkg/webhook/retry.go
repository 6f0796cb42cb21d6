package webhook

import "net/http"

// RetryPolicy decides whether a failed attempt is worth repeating. err is
// the transport error, status is zero when err is non-nil.
type RetryPolicy func(status int, err error) bool

// DefaultRetryPolicy retries transport errors, 404, 408, 429 and every 5xx.
// 404 is included because downstream gateways answer it while a route is
// being redeployed.
func DefaultRetryPolicy(status int, err error) bool {
	if err != nil {
		return true
	}
	switch {
	case status == http.StatusNotFound,
		status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	}
	return false
}

// NeverRetry disables retries.
func NeverRetry(int, error) bool { return false }
