package middleware

import (
	"net/http"
	"strconv"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
)

// RateLimit applies the shared fixed-window limiter per client IP and sets
// the usual X-RateLimit-* headers. Authenticated callers are still keyed by
// IP: the budget protects the process, not individual accounts.
func RateLimit(limiter *auth.RateLimiter, cfg auth.RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + getClientIP(r)

			// CORS preflights are browser plumbing, not client traffic;
			// report the window without spending an attempt on it.
			if r.Method == http.MethodOptions {
				if status := limiter.Status(key); status != nil {
					w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(status.ResetAt.Unix(), 10))
				}
				next.ServeHTTP(w, r)
				return
			}

			result := limiter.Check(key, cfg)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxAttempts))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First IP in the list is the original client.
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

// ClientIP is the exported lookup for handlers that record audit entries.
func ClientIP(r *http.Request) string {
	return getClientIP(r)
}
