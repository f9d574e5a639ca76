package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey = "claims"
	UserIDKey = "userID"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Revocations reports whether an access token was revoked before it expired.
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthOption customizes AuthMiddleware.
type AuthOption func(*authOptions)

type authOptions struct {
	revocations Revocations
}

// WithRevocations rejects tokens found in the given revocation list.
func WithRevocations(r Revocations) AuthOption {
	return func(o *authOptions) { o.revocations = r }
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return "", false
	}
	var token string
	if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
		return "", false
	}
	return token, true
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
func AuthMiddleware(ver Verifier, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		if o.revocations != nil {
			revoked, err := o.revocations.IsRevoked(c.Request.Context(), token)
			if err != nil {
				logger.Errorf("revocation check failed: %v", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "token revocation check failed"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, sub)
		c.Next()
	}
}

// UserID returns the authenticated subject, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
