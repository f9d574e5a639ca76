package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, X-Request-ID"
)

// CORS allows browser calls from the given origins ("*" allows any).
// Disallowed origins get no CORS headers; preflights are answered with 204.
func CORS(origins []string) gin.HandlerFunc {
	wildcard := lo.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !(wildcard || lo.Contains(origins, origin)) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		if wildcard {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", corsHeaders)
		h.Set("Access-Control-Expose-Headers", RequestIDHeader)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
