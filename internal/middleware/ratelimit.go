package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ipLimiter tracks fixed-window request counts per client IP. Windows
// reset lazily on the next request after expiry.
type ipLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*windowCount
}

type windowCount struct {
	seen    int
	resetAt time.Time
}

// RateLimit caps each client IP at limit requests per window. Rejected
// requests get a 429 with a Retry-After hint. Generation endpoints are
// expensive upstream, so the cap applies before any handler work.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	lim := &ipLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*windowCount),
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if retryAfter, ok := lim.take(clientIPForRateLimit(r)); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take consumes one slot for ip. When the window is exhausted it
// returns false and the whole seconds remaining until reset.
func (l *ipLimiter) take(ip string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.clients[ip]
	if !ok || now.After(c.resetAt) {
		c = &windowCount{resetAt: now.Add(l.window)}
		l.clients[ip] = c
	}
	if c.seen >= l.limit {
		return int(time.Until(c.resetAt).Seconds()) + 1, false
	}
	c.seen++
	return 0, true
}

// clientIPForRateLimit prefers the first parseable X-Forwarded-For hop
// and falls back to the connection's remote address.
func clientIPForRateLimit(r *http.Request) string {
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		ip := strings.TrimSpace(hop)
		if ip != "" && net.ParseIP(ip) != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
