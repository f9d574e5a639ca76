package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window limiter shared by every instance behind the same Redis.
// Each window INCRs a per-key counter and allows floor(rps*window)+burst requests.
type RedisRateLimiter struct {
	client  *redis.Client
	allowed int64
	window  int64
	now     func() time.Time
}

// NewRedisRateLimiter builds a limiter; windows shorter than one second are rounded up.
func NewRedisRateLimiter(client *redis.Client, rps float64, burst int, window time.Duration) *RedisRateLimiter {
	seconds := int64(window.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return &RedisRateLimiter{
		client:  client,
		allowed: int64(rps*float64(seconds)) + int64(burst),
		window:  seconds,
		now:     time.Now,
	}
}

// Handler returns the gin middleware.
func (l *RedisRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		bucket := l.now().Unix() / l.window
		key := fmt.Sprintf("rl:%s:%d", rateKey(c), bucket)

		cnt, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			logger.Errorf("rate limit check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}
		if cnt == 1 {
			_ = l.client.Expire(ctx, key, time.Duration(l.window+1)*time.Second).Err()
		}
		if cnt > l.allowed {
			rejectRateLimited(c, "redis", strconv.FormatInt(l.window, 10))
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}

// RedisRateLimitMiddleware falls back to the in-memory limiter when client is nil.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	return NewRedisRateLimiter(client, rps, burst, window).Handler()
}
