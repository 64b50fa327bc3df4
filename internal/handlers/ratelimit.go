package handlers

import (
	"net"
	"net/http"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const limiterIdleExpiry = 10 * time.Minute

// ClientRateLimiter keeps one token bucket per client address.
// Buckets idle for limiterIdleExpiry are dropped.
type ClientRateLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *gocache.Cache
}

func NewClientRateLimiter(perSecond, burst int) *ClientRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientRateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: gocache.New(limiterIdleExpiry, limiterIdleExpiry),
	}
}

// Allow reports whether the client may make another request now.
func (l *ClientRateLimiter) Allow(client string) bool {
	if v, ok := l.buckets.Get(client); ok {
		l.buckets.SetDefault(client, v)
		return v.(*rate.Limiter).Allow()
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(client, lim, gocache.DefaultExpiration); err != nil {
		// Lost the race with another request from the same client.
		if v, ok := l.buckets.Get(client); ok {
			return v.(*rate.Limiter).Allow()
		}
	}
	return lim.Allow()
}

// Middleware answers 429 once a client exceeds its bucket.
func (l *ClientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientAddr(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
