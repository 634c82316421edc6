package server

import (
	"net/http"

	"golang.org/x/time/rate"

	"whereisxur/internal/metrics"
)

// newLimiter falls back to 5 rps with a burst of 20 for unset values.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 20
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func limit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", "1")
				fail(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
