package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestLogger assigns a request id (kept from X-Request-ID when the caller sent one)
// and writes one access log entry per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(RequestIDKey, reqID)
		c.Writer.Header().Set(RequestIDHeader, reqID)

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, "query", q)
		}
		if !strings.HasPrefix(c.Request.URL.Path, "/health") {
			fields = append(fields, "user_agent", c.Request.UserAgent())
		}

		log := logger.With(fields...)
		switch {
		case len(c.Errors) > 0:
			log.Errorw("HTTP request with errors", "errors", c.Errors.Errors())
		case status >= 500:
			log.Errorw("HTTP request")
		default:
			log.Infow("HTTP request")
		}
	}
}
