package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/service"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/upstream"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

// newRouter wires the real service and client against a fake provider server.
func newRouter(t *testing.T, provider http.HandlerFunc, newsKey, movieKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	client := upstream.NewClient(srv.Client(), upstream.WithSleeper(noSleep))
	svc := service.New(service.Config{
		News:   config.ProviderConfig{BaseURL: srv.URL + "/v2", APIKey: newsKey, Placeholder: config.NewsAPIPlaceholderKey},
		Movies: config.ProviderConfig{BaseURL: srv.URL + "/3", APIKey: movieKey, Placeholder: config.TMDBPlaceholderKey},
	}, client)

	g := gin.New()
	RegisterContentRoutes(g, svc)
	return g
}

func get(g *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestMovies_GenreQueryHitsDiscover(t *testing.T) {
	var mu sync.Mutex
	var seen url.URL
	g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = *r.URL
		mu.Unlock()
		_, _ = w.Write([]byte(`{"results":[{"id":11,"title":"Heat"},{"id":12,"title":"Ronin","vote_average":6.9}]}`))
	}, "", "tmdb-key")

	w := get(g, "/content/movies?genre=action")
	require.Equal(t, http.StatusOK, w.Code)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/3/discover/movie", seen.Path)
	require.Equal(t, "28", seen.Query().Get("with_genres"))
	require.Equal(t, "popularity.desc", seen.Query().Get("sort_by"))

	var movies []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movies))
	require.Len(t, movies, 2)
	require.Equal(t, float64(0), movies[0]["vote_average"])
	require.Equal(t, 6.9, movies[1]["vote_average"])
}

func TestNews_PlaceholderWithoutKey(t *testing.T) {
	var calls int32
	g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, config.NewsAPIPlaceholderKey, "")

	w := get(g, "/content/news?category=sports")
	require.Equal(t, http.StatusOK, w.Code)
	var items []content.NewsItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	require.Equal(t, "sports", items[0].Category)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestNews_InvalidPagingIsBadRequest(t *testing.T) {
	g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {}, "k", "k")
	require.Equal(t, http.StatusBadRequest, get(g, "/content/news?page=two").Code)
	require.Equal(t, http.StatusBadRequest, get(g, "/content/news?pageSize=1.5").Code)
	require.Equal(t, http.StatusBadRequest, get(g, "/content/movies?page=x").Code)
}

func TestUpstreamStatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		wantCode int
		wantErr  string
	}{
		{"rate limited", http.StatusTooManyRequests, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."},
		{"unauthorized", http.StatusUnauthorized, http.StatusUnauthorized, "Failed to fetch news"},
		{"server error", http.StatusBadGateway, http.StatusBadGateway, "Failed to fetch news"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"status":"error"}`))
			}, "news-key", "")

			w := get(g, "/content/news")
			require.Equal(t, tc.wantCode, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tc.wantErr, body["error"])
			require.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestMovies_MalformedBodyIsInternalError(t *testing.T) {
	g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}, "", "k")

	w := get(g, "/content/movies")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

type stubService struct {
	newsErr error
}

func (s stubService) News(context.Context, content.NewsQuery) ([]content.NewsItem, error) {
	return nil, s.newsErr
}
func (s stubService) Movies(context.Context, content.MovieQuery) ([]content.Movie, error) {
	return []content.Movie{}, nil
}
func (s stubService) Social(content.SocialQuery) []content.SocialPost { return nil }
func (s stubService) Search(context.Context, content.SearchQuery) []content.SearchResult {
	return []content.SearchResult{}
}

func TestNews_UnreachableIsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterContentRoutes(g, stubService{newsErr: errors.Join(upstream.ErrUnreachable, errors.New("dial tcp"))})

	w := get(g, "/content/news")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"Upstream service unreachable"}`, w.Body.String())
}

func TestSearch_ShortQueryReturnsEmptyArray(t *testing.T) {
	var calls int32
	g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, "k", "k")

	w := get(g, "/content/search?q=a")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestSearch_NewsFailsMoviesSucceed(t *testing.T) {
	g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/everything" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"a"},{"id":2,"title":"b"},{"id":3,"title":"c"}]}`))
	}, "k", "k")

	w := get(g, "/content/search?q=robots")
	require.Equal(t, http.StatusOK, w.Code)
	var res []content.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 4)

	kinds := map[content.Kind]int{}
	for _, r := range res {
		kinds[r.Type]++
	}
	require.Equal(t, 3, kinds[content.KindMovie])
	require.Equal(t, 1, kinds[content.KindSocial])
}

func TestSocial_Hashtag(t *testing.T) {
	g := newRouter(t, func(w http.ResponseWriter, r *http.Request) {}, "", "")

	w := get(g, "/content/social?hashtag=climate")
	require.Equal(t, http.StatusOK, w.Code)
	var posts []content.SocialPost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	require.Equal(t, "EcoWarrior", posts[0].Author)
}
