package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/oggyb/wa-autoreply/internal/metrics"
)

// Metrics records request counts and latencies labelled by the matched
// route pattern, so path parameters do not create new series.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := wrap(w)

			next.ServeHTTP(rec, r)

			// ServeMux fills in Pattern on the request it routed.
			path := r.Pattern
			if path == "" {
				path = "unknown"
			}

			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.Status())).Inc()
		})
	}
}
