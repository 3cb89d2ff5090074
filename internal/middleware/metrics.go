package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/map-collection/internal/metrics"
)

// NewMetrics records request count and latency per chi route pattern, so
// /posts/{postId} is one series regardless of the id. Unmatched requests are
// recorded under "unmatched".
func NewMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordAPIRequest(r.Method, route, ww.Status(), time.Since(start))
		})
	}
}
