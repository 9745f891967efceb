package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, rate int) (*rateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newRateLimiter(client, rate, time.Minute), mr
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(t, 5)
	now := time.Date(2024, 1, 1, 12, 0, 10, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	// First 5 requests should be allowed
	for i := 0; i < 5; i++ {
		ok, _, err := rl.allow(ctx, "192.168.1.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be allowed", i+1)
	}

	// 6th request should be denied
	ok, reset, err := rl.allow(ctx, "192.168.1.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, reset)

	// Different IP should be allowed
	ok, _, err = rl.allow(ctx, "192.168.1.2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_Window(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _, _ := rl.allow(ctx, "10.0.0.1")
	assert.True(t, ok)
	ok, _, _ = rl.allow(ctx, "10.0.0.1")
	assert.False(t, ok)

	now = now.Add(time.Minute)
	ok, _, _ = rl.allow(ctx, "10.0.0.1")
	assert.True(t, ok, "a new window starts fresh")
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl, mr := newTestLimiter(t, 1)
	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusNoContent, do().Code)
	rr := do()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// Redis down: fail open.
	mr.Close()
	assert.Equal(t, http.StatusNoContent, do().Code)
}
