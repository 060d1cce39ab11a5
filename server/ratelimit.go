package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"TubeFM/logger"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window request quota per client IP on the API
// routes. With Redis configured the window counters are shared across
// replicas; otherwise they live in process memory.
type RateLimiter struct {
	limit  int
	window time.Duration
	rdb    *redis.Client

	mu   sync.Mutex
	hits map[string]*windowHits
}

type windowHits struct {
	count int
	reset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// A limit of zero disables limiting. rdb may be nil.
func NewRateLimiter(limit int, window time.Duration, rdb *redis.Client) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		rdb:    rdb,
		hits:   make(map[string]*windowHits),
	}
}

// Allow records one hit for key and reports whether it is within quota,
// along with the time until the current window resets.
func (l *RateLimiter) Allow(r *http.Request, key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}
	if l.rdb != nil {
		return l.allowRedis(r, key)
	}
	return l.allowMemory(key)
}

func (l *RateLimiter) allowRedis(r *http.Request, key string) (bool, time.Duration) {
	now := time.Now()
	windowStart := now.Truncate(l.window)
	retry := windowStart.Add(l.window).Sub(now)

	rkey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())

	ctx := r.Context()
	count, err := l.rdb.Incr(ctx, rkey).Result()
	if err != nil {
		// A broken counter store must not take the API down.
		logger.Warn("rate limit counter unavailable", logger.ErrorField(err))
		return true, 0
	}
	if count == 1 {
		l.rdb.Expire(ctx, rkey, l.window)
	}

	return count <= int64(l.limit), retry
}

func (l *RateLimiter) allowMemory(key string) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.hits[key]
	if !ok || now.After(h.reset) {
		h = &windowHits{reset: now.Add(l.window)}
		l.hits[key] = h
	}
	h.count++

	if len(l.hits) > 10000 {
		l.evictExpired(now)
	}

	return h.count <= l.limit, h.reset.Sub(now)
}

// evictExpired drops windows that have already reset. Caller holds the lock.
func (l *RateLimiter) evictExpired(now time.Time) {
	for k, h := range l.hits {
		if now.After(h.reset) {
			delete(l.hits, k)
		}
	}
}

// Middleware wraps API handlers with the quota check.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.Allow(r, clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
