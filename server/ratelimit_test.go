package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterMemoryWindow(t *testing.T) {
	l := NewRateLimiter(3, 100*time.Millisecond, nil)

	for i := 0; i < 3; i++ {
		ok, _ := l.allowMemory("1.2.3.4")
		assert.True(t, ok, "request %d should be within quota", i+1)
	}

	ok, retry := l.allowMemory("1.2.3.4")
	assert.False(t, ok, "request over quota must be denied")
	assert.Greater(t, retry, time.Duration(0))

	// A different client has its own window.
	ok, _ = l.allowMemory("5.6.7.8")
	assert.True(t, ok)

	// The window resets.
	time.Sleep(120 * time.Millisecond)
	ok, _ = l.allowMemory("1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiterDisabled(t *testing.T) {
	l := NewRateLimiter(0, time.Minute, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	for i := 0; i < 1000; i++ {
		ok, _ := l.Allow(req, "1.2.3.4")
		assert.True(t, ok)
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	l := NewRateLimiter(2, time.Minute, nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := l.Middleware(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "Too many requests")
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.RemoteAddr = "bare-host"
	assert.Equal(t, "bare-host", clientIP(req))
}
