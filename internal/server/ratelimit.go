// ratelimit.go - Per-IP rate limiting for the JSON API.
//
// Counts requests in fixed windows in Redis so the limit holds across
// replicas.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type rateLimiter struct {
	client redis.Cmdable
	rate   int           // requests allowed per window
	window time.Duration // time window for rate limiting
	now    func() time.Time
}

// newRateLimiter allows rate requests per window per client IP.
func newRateLimiter(client redis.Cmdable, rate int, window time.Duration) *rateLimiter {
	return &rateLimiter{client: client, rate: rate, window: window, now: time.Now}
}

// allow counts a request from ip and reports whether it is within the limit,
// and how long until the window resets.
func (rl *rateLimiter) allow(ctx context.Context, ip string) (bool, time.Duration, error) {
	now := rl.now()
	slot := now.UnixNano() / int64(rl.window)
	key := "ratelimit:" + ip + ":" + strconv.FormatInt(slot, 10)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	reset := time.Unix(0, (slot+1)*int64(rl.window)).Sub(now)
	return incr.Val() <= int64(rl.rate), reset, nil
}

// middleware answers 429 once an IP exceeds its budget. Redis failures let
// the request through.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, reset, err := rl.allow(r.Context(), clientIP(r))
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable")
		}
		if !ok {
			secs := int(reset.Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeJSONError(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
