package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// NewRateLimiter allows perMinute requests per client IP and answers the rest
// with 429. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
		}),
	)
}
