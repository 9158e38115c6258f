package middlewares

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
)

//go:generate mockgen -source=ratelimit.go -destination=ratelimit_mock.go -package=middlewares

// RateLimiter decides whether one more request under key fits in limit.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// LoginRateLimit allows perMinute attempts per minute per client, at most burst at once.
func LoginRateLimit(perMinute, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: perMinute, Burst: burst, Period: time.Minute}
}

// RateLimitMiddleware rejects clients exceeding limit with 429. Requests are
// keyed by prefix and client IP. The limiter failing lets requests through.
func RateLimitMiddleware(limiter RateLimiter, limit redis_rate.Limit, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + prefix + ":" + clientIP(r)

			res, err := limiter.Allow(r.Context(), key, limit)
			if err != nil {
				logger.Log.Warnw("rate limiter unavailable", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if res.Allowed == 0 {
				retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				logger.Log.Infow("rate limit exceeded", "key", key)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
