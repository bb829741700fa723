package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Counter is the slice of the cache client the limiter needs.
type Counter interface {
	Count(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit applies a fixed-window per-client-IP limit backed by redis.
// If the counter backend is down the request is allowed through; the edge
// should degrade open, not take checkout down with it.
func RateLimit(counter Counter, limit int64, window time.Duration, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			count, err := counter.Count(r.Context(), "ratelimit:"+host, window)
			if err != nil {
				logger.Warn("rate limit counter unavailable", "error", err)
				next(w, r)
				return
			}

			if count > limit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", window.String())
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next(w, r)
		}
	}
}
