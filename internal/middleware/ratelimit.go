package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/pkg/clientip"
)

const (
	RateLimitWindow      = 120 * time.Second
	RateLimitMaxRequests = 120
	RateLimitKeyPrefix   = "nutrameter:ratelimit:"

	redisRateLimitTimeout = 200 * time.Millisecond
)

// RedisRateLimiter is a fixed-window counter per client IP shared by every
// server instance. Any Redis failure lets the request through.
type RedisRateLimiter struct {
	TrustProxy bool

	client redis.Cmdable
	window time.Duration
	max    int
	logger *zap.Logger
	now    func() time.Time
}

func NewRedisRateLimiter(client redis.Cmdable, window time.Duration, max int, logger *zap.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, window: window, max: max, logger: logger, now: time.Now}
}

// hit counts one request in the current window and returns the new count.
func (l *RedisRateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	windowStart := l.now().Truncate(l.window).Unix()
	key := RateLimitKeyPrefix + ip + ":" + strconv.FormatInt(windowStart, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), redisRateLimitTimeout)
		count, err := l.hit(ctx, clientip.FromRequest(r, l.TrustProxy))
		cancel()
		if err != nil {
			l.logger.Debug("rate limit check skipped", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		reset := l.now().Truncate(l.window).Add(l.window)
		remaining := max(int64(l.max)-count, 0)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > int64(l.max) {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
