package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pulseboard/pulseboard/backend/go-services/handlers"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/appstate"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/handler"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/sessions"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/tokens"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/users"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Deps are the services mounted by NewRouter. Only Config and Content are required;
// auth and user routes are mounted when Users, Sessions and State are all set.
type Deps struct {
	Config    *config.Config
	Content   handler.Service
	Users     *users.Service
	Sessions  *sessions.Service
	State     *appstate.Service
	Blacklist *sessions.Blacklist
	IDTokens  middleware.Verifier
	Redis     *redis.Client
	Checks    map[string]Check
}

var startTime = time.Now()

func recoverJSON(c *gin.Context, recovered interface{}) {
	logger.Errorf("panic recovered: %v (path=%s)", recovered, c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// NewRouter builds the gin engine with middleware and every route.
// Public routes are rate limited per client IP. The authenticated /api group
// is limited per user, after AuthMiddleware has resolved the subject.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.CustomRecovery(recoverJSON), middleware.CORS(cfg.Server.CORSOrigins))

	public := r.Group("")
	if lim := rateLimiter(d); lim != nil {
		public.Use(lim)
	}

	public.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	public.GET("/ready", readyHandler(d.Checks))
	public.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(public)

	handler.RegisterContentRoutes(public, d.Content)

	if d.Users == nil || d.Sessions == nil || d.State == nil {
		logger.Warnf("auth and user routes not registered because user/session/state services are unavailable")
		return r
	}
	if !cfg.JWT.Configured() {
		logger.Warnf("auth and user routes not registered because JWT_SECRET is empty")
		return r
	}

	authOpts := []handlers.AuthHandlerOption{handlers.WithBlacklist(d.Blacklist)}
	if d.IDTokens != nil {
		authOpts = append(authOpts, handlers.WithIDTokenVerifier(d.IDTokens))
	}
	handlers.NewAuthHandler(cfg, d.Users, d.Sessions, authOpts...).RegisterRoutes(public)

	api := r.Group("/api", middleware.AuthMiddleware(tokens.NewVerifier(cfg.JWT.Secret), middleware.WithRevocations(d.Blacklist)))
	if lim := rateLimiter(d); lim != nil {
		api.Use(lim)
	}
	handlers.NewUserHandler(d.Users, d.State).RegisterRoutes(api)
	return r
}

// rateLimiter returns a fresh limiter for one route group, or nil when limiting is off.
// In-memory limiters keep separate buckets per group; the Redis limiter shares one
// keyspace where user and IP keys never collide.
func rateLimiter(d Deps) gin.HandlerFunc {
	rl := d.Config.RateLimit
	if !rl.Enabled {
		return nil
	}
	if rl.UseRedis && d.Redis != nil {
		win := time.Duration(rl.WindowSeconds) * time.Second
		return middleware.RedisRateLimitMiddleware(d.Redis, rl.RPS, rl.Burst, win)
	}
	return middleware.RateLimitMiddleware(rl.RPS, rl.Burst)
}

// readyHandler returns 200 only when every check passes.
func readyHandler(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := map[string]bool{}
		for name, check := range checks {
			err := check(ctx)
			deps[name] = err == nil
			if err != nil {
				logger.Warnf("readiness: %s not ready: %v", name, err)
				ready = false
			}
		}
		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	}
}
