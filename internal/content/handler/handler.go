package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/upstream"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
)

// Service is the content backend the routes delegate to.
type Service interface {
	News(ctx context.Context, q content.NewsQuery) ([]content.NewsItem, error)
	Movies(ctx context.Context, q content.MovieQuery) ([]content.Movie, error)
	Social(q content.SocialQuery) []content.SocialPost
	Search(ctx context.Context, q content.SearchQuery) []content.SearchResult
}

type newsParams struct {
	Category string `form:"category,default=general"`
	Q        string `form:"q"`
	Country  string `form:"country,default=us"`
	PageSize int    `form:"pageSize,default=20"`
	Page     int    `form:"page,default=1"`
}

type movieParams struct {
	Genre string `form:"genre"`
	Q     string `form:"q"`
	Page  int    `form:"page,default=1"`
}

// RegisterContentRoutes mounts the /content endpoints on r.
func RegisterContentRoutes(r gin.IRouter, svc Service) {
	g := r.Group("/content")

	g.GET("/news", func(c *gin.Context) {
		var p newsParams
		if err := c.ShouldBindQuery(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters: page and pageSize must be integers"})
			return
		}
		items, err := svc.News(c.Request.Context(), content.NewsQuery{
			Category: p.Category,
			Q:        p.Q,
			Country:  p.Country,
			Page:     p.Page,
			PageSize: p.PageSize,
		})
		if err != nil {
			writeUpstreamError(c, err, "Failed to fetch news")
			return
		}
		c.JSON(http.StatusOK, items)
	})

	g.GET("/movies", func(c *gin.Context) {
		var p movieParams
		if err := c.ShouldBindQuery(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters: page must be an integer"})
			return
		}
		items, err := svc.Movies(c.Request.Context(), content.MovieQuery{Genre: p.Genre, Q: p.Q, Page: p.Page})
		if err != nil {
			writeUpstreamError(c, err, "Failed to fetch movies")
			return
		}
		c.JSON(http.StatusOK, items)
	})

	g.GET("/social", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Social(content.SocialQuery{Hashtag: c.Query("hashtag")}))
	})

	g.GET("/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Search(c.Request.Context(), content.SearchQuery{Q: c.Query("q"), Type: c.Query("type")}))
	})
}

// writeUpstreamError maps a provider failure onto the response status:
// 429 for rate limiting, the provider's own status for other HTTP failures,
// and 500 for everything else.
func writeUpstreamError(c *gin.Context, err error, failure string) {
	var se *upstream.StatusError
	switch {
	case errors.Is(err, upstream.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
	case errors.As(err, &se):
		c.JSON(se.StatusCode, gin.H{"error": failure})
	case errors.Is(err, upstream.ErrUnreachable):
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upstream service unreachable"})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
