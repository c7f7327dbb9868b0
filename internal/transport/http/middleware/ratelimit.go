package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"emsspace/internal/transport/http/api"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	perMin  int
	clients map[string]*clientLimiter
}

// RateLimit allows perMinute requests per caller with a small burst. Callers
// are keyed by authenticated user when available, client IP otherwise.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	rl := &rateLimiter{perMin: perMinute, clients: map[string]*clientLimiter{}}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if perMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.allow(callerKey(r)) {
				w.Header().Set("Retry-After", "60")
				api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		limit := rate.Every(time.Minute / time.Duration(rl.perMin))
		client = &clientLimiter{limiter: rate.NewLimiter(limit, rl.perMin)}
		rl.clients[key] = client
	}
	client.lastSeen = time.Now()

	if len(rl.clients) > 10000 {
		rl.evictStale()
	}
	return client.limiter.Allow()
}

// evictStale drops limiters idle for over ten minutes; called under mu.
func (rl *rateLimiter) evictStale() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for key, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

func callerKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return "ip:" + ClientIP(r)
}

func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		if value := strings.TrimSpace(parts[0]); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
