package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Limiter decides whether a client key may make another request
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// RateLimit rejects requests over the limiter's budget with 429 and a Retry-After
// header. Clients are keyed by the remote host. X-Forwarded-For is only read when
// trustProxy is set, i.e. when a reverse proxy in front of the server owns that header.
func RateLimit(limiter Limiter, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := limiter.Allow(ClientIP(r, trustProxy))
			if !ok {
				seconds := int(retryAfter / time.Second)
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests, please retry later"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the address a request is attributed to. The first X-Forwarded-For
// entry wins only when trustForwarded is set; otherwise clients could pick their own key.
func ClientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
			if first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
