package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/models"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/sessions"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/tokens"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/users"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/middleware"
)

// Login modes.
const (
	ModeCredentials = "credentials"
	ModeOAuth       = "oauth"
)

// LoginRequest is either an email/password pair or an OAuth ID token.
type LoginRequest struct {
	Mode     string `json:"mode" binding:"required"` // "credentials" | "oauth"
	Email    string `json:"email"`
	Password string `json:"password"`
	IDToken  string `json:"id_token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	access      *tokens.Verifier
	idTokens    middleware.Verifier
	blacklist   *sessions.Blacklist
}

// AuthHandlerOption customizes an AuthHandler.
type AuthHandlerOption func(*AuthHandler)

// WithIDTokenVerifier enables mode=oauth logins.
func WithIDTokenVerifier(v middleware.Verifier) AuthHandlerOption {
	return func(h *AuthHandler) { h.idTokens = v }
}

// WithBlacklist makes logout revoke the caller's access token.
func WithBlacklist(b *sessions.Blacklist) AuthHandlerOption {
	return func(h *AuthHandler) { h.blacklist = b }
}

func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service, opts ...AuthHandlerOption) *AuthHandler {
	h := &AuthHandler{
		cfg:         cfg,
		usersSvc:    u,
		sessionsSvc: s,
		access:      tokens.NewVerifier(cfg.JWT.Secret),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the /auth group.
func (h *AuthHandler) RegisterRoutes(rg gin.IRouter) {
	a := rg.Group("/auth")
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// Register creates a credentials account and returns it without the password hash.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		return
	case errors.Is(err, users.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Errorf("registration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during registration"})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Login authenticates with credentials or an OAuth ID token and opens a refresh session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	var (
		u   *models.User
		err error
	)
	switch req.Mode {
	case ModeCredentials:
		u, err = h.usersSvc.Authenticate(ctx, req.Email, req.Password)
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
	case ModeOAuth:
		if h.idTokens == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "oauth login is not configured"})
			return
		}
		if req.IDToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id_token required for oauth mode"})
			return
		}
		tok, verr := h.idTokens.Verify(ctx, req.IDToken)
		if verr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id token", "details": verr.Error()})
			return
		}
		var claims map[string]interface{}
		if cerr := tok.Claims(&claims); cerr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}
		u, err = h.usersSvc.UpsertFromClaims(ctx, claims)
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "This email is registered with a password"})
			return
		case errors.Is(err, users.ErrEmailLinked):
			c.JSON(http.StatusConflict, gin.H{"error": "This email is linked to another account"})
			return
		}
		if err == nil && u == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "id token has no subject"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported mode"})
		return
	}
	if err != nil {
		logger.Errorf("login (%s) failed: %v", req.Mode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	rft, err := h.sessionsSvc.CreateSession(ctx, u.ID, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": rft,
		"user":         u,
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	sess, err := h.sessionsSvc.ValidateRefresh(ctx, req.RefreshToken)
	if err != nil {
		logger.Errorf("refresh validation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	u, err := h.usersSvc.GetByID(ctx, sess.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "expiresIn": int(h.cfg.JWT.AccessTokenTTL.Seconds())})
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
	// All ends every session of the user, not just this one.
	All bool `json:"all"`
}

// Logout removes the refresh session and blacklists the bearer token for its remaining lifetime.
// Both parts are optional; an unverifiable bearer token is ignored. With "all" set, every
// session of the user is dropped; the user comes from the bearer token or the refresh session.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	ctx := c.Request.Context()

	var userID string
	if at, ok := middleware.BearerToken(c); ok {
		if claims, err := h.access.Parse(at); err == nil {
			userID, _ = claims.GetSubject()
			if h.blacklist != nil {
				exp, _ := claims.GetExpirationTime()
				if err := h.blacklist.Revoke(ctx, at, time.Until(exp.Time)); err != nil {
					logger.Errorf("failed to blacklist access token: %v", err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
					return
				}
			}
		}
	}

	if req.All {
		if userID == "" && req.RefreshToken != "" {
			sess, err := h.sessionsSvc.ValidateRefresh(ctx, req.RefreshToken)
			if err != nil {
				logger.Errorf("refresh validation failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
				return
			}
			if sess != nil {
				userID = sess.UserID
			}
		}
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "a valid access or refresh token is required to sign out everywhere"})
			return
		}
		n, err := h.sessionsSvc.RevokeAll(ctx, userID)
		if err != nil {
			logger.Errorf("failed to revoke sessions for %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove sessions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out everywhere", "sessions": n})
		return
	}

	if req.RefreshToken != "" {
		if err := h.sessionsSvc.DeleteRefresh(ctx, req.RefreshToken); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
