package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limited(t *testing.T, cfg RateLimitConfig) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return RateLimit(ctx, cfg)(okHandler())
}

func post(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_UnderLimit(t *testing.T) {
	h := limited(t, RateLimitConfig{Max: 5, Window: time.Minute})

	for i := range 5 {
		w := post(h, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	h := limited(t, RateLimitConfig{Max: 2, Window: time.Minute})

	for range 2 {
		require.Equal(t, http.StatusOK, post(h, "10.0.0.1:9999").Code)
	}

	w := post(h, "10.0.0.1:9999")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code":"rate_limited","message":"rate limit exceeded"}`, w.Body.String())
}

func TestRateLimit_DifferentIPs(t *testing.T) {
	h := limited(t, RateLimitConfig{Max: 1, Window: time.Minute})

	assert.Equal(t, http.StatusOK, post(h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.2:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.1:5678").Code)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	h := limited(t, RateLimitConfig{
		Max:    1,
		Window: time.Minute,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-Staff")
		},
	})
	do := func(staff string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Staff", staff)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("kim"))
	assert.Equal(t, http.StatusTooManyRequests, do("kim"))
	assert.Equal(t, http.StatusOK, do("park"))
}

func TestRateLimit_XForwardedFor(t *testing.T) {
	h := limited(t, RateLimitConfig{Max: 1, Window: time.Minute})
	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", "203.0.113.50, 70.41.3.18")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("192.168.1.1:4444"))
	assert.Equal(t, http.StatusTooManyRequests, do("192.168.1.2:5555"))
}

func TestRateLimit_SkipReadOnly(t *testing.T) {
	h := limited(t, RateLimitConfig{Max: 1, Window: time.Minute, Skip: ReadOnly})

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.RemoteAddr = "10.0.0.9:1"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	assert.Equal(t, http.StatusOK, post(h, "10.0.0.9:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.9:1").Code)
}

func TestLimiter_SlidingWindow(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, _, ok := l.take("a", start)
	require.True(t, ok)
	_, _, ok = l.take("a", start.Add(time.Second))
	require.True(t, ok)
	_, _, ok = l.take("a", start.Add(2*time.Second))
	require.False(t, ok)

	// Half way into the next window the previous two count as one.
	_, _, ok = l.take("a", start.Add(90*time.Second))
	assert.True(t, ok)

	// Two windows later the client starts over.
	remaining, _, ok := l.take("a", start.Add(5*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	l.evict(start.Add(10 * time.Minute))
	assert.Empty(t, l.clients)
}
