// Package reliability classifies transient failures and paces retries
// against the generation backend.
package reliability

import "time"

// IsRetryableHTTPStatus classifies HTTP status codes worth retrying: rate
// limiting and transient server-side failures. Client errors are not.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
