package server

import (
	"net/http"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/service"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/upstream"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// NewContentService wires the upstream client (shared http.Client, retry policy,
// optional Redis response cache) into the content service.
func NewContentService(cfg *config.Config, rdb *redis.Client) *service.Service {
	httpClient := &http.Client{Timeout: cfg.Content.UpstreamTimeout}
	opts := []upstream.Option{
		upstream.WithRetryPolicy(upstream.RetryPolicy{
			Attempts:     cfg.Content.RetryAttempts,
			InitialDelay: cfg.Content.RetryInitial,
			Multiplier:   2,
		}),
	}
	if cfg.Content.CacheEnabled {
		if rdb != nil {
			opts = append(opts, upstream.WithCache(upstream.NewRedisCache(rdb, "")))
		} else {
			logger.Warnf("CONTENT_CACHE_ENABLED is set but Redis is not available; caching disabled")
		}
	}

	svc := service.New(service.FromContentConfig(cfg.Content), upstream.NewClient(httpClient, opts...))
	if !svc.NewsConfigured() {
		logger.Warnf("NEWSAPI_KEY not configured; serving placeholder news")
	}
	if !svc.MoviesConfigured() {
		logger.Warnf("TMDB_API_KEY not configured; serving placeholder movies")
	}
	return svc
}
