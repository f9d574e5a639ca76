package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
	"golang.org/x/time/rate"
)

// rateKey prefers the authenticated subject (NAT-friendly) and falls back to the client IP.
func rateKey(c *gin.Context) string {
	if sub := UserID(c); sub != "" {
		return "sub:" + sub
	}
	if v, ok := c.Get(ClaimsKey); ok {
		if cm, ok := v.(map[string]interface{}); ok {
			if sub, ok := cm["sub"].(string); ok && sub != "" {
				return "sub:" + sub
			}
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func rejectRateLimited(c *gin.Context, limiter, retryAfter string) {
	c.Header("Retry-After", retryAfter)
	metrics.RateLimitRejected.WithLabelValues(limiter).Inc()
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
// Each middleware instance owns its limiter store.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	var store sync.Map // map[string]*rate.Limiter
	getLimiter := func(key string) *rate.Limiter {
		if v, ok := store.Load(key); ok {
			return v.(*rate.Limiter)
		}
		v, _ := store.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), burst))
		return v.(*rate.Limiter)
	}

	return func(c *gin.Context) {
		if !getLimiter(rateKey(c)).Allow() {
			rejectRateLimited(c, "memory", "1")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
