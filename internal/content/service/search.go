package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/upstream"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	// MinSearchLength is the shortest query that reaches any provider.
	MinSearchLength = 2
	// searchPerSource caps the results kept from each provider.
	searchPerSource = 5
	// MaxSearchResults caps the combined result list.
	MaxSearchResults = 10
)

// searchTypeAliases maps the plural names used by favorites onto result kinds.
var searchTypeAliases = map[string]content.Kind{
	"movies": content.KindMovie,
}

func searchSelects(typ string, k content.Kind) bool {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if alias, ok := searchTypeAliases[typ]; ok {
		typ = string(alias)
	}
	return typ == "" || typ == "all" || typ == string(k)
}

// Search runs a unified search across news, movies and the social feed.
//
// Provider failures are logged and contribute no results; they never fail the
// search. Queries shorter than MinSearchLength return an empty list without
// touching any provider.
func (s *Service) Search(ctx context.Context, q content.SearchQuery) []content.SearchResult {
	if utf8.RuneCountInString(q.Q) < MinSearchLength {
		return []content.SearchResult{}
	}

	var news, movies []content.SearchResult
	var g errgroup.Group
	if searchSelects(q.Type, content.KindNews) && s.NewsConfigured() {
		g.Go(func() error {
			res, err := s.searchNews(ctx, q.Q)
			if err != nil {
				logger.Warnf("news search failed (q=%q): %v", q.Q, err)
				return nil
			}
			news = res
			return nil
		})
	}
	if searchSelects(q.Type, content.KindMovie) && s.MoviesConfigured() {
		g.Go(func() error {
			res, err := s.searchMovies(ctx, q.Q)
			if err != nil {
				logger.Warnf("movie search failed (q=%q): %v", q.Q, err)
				return nil
			}
			movies = res
			return nil
		})
	}
	_ = g.Wait()

	results := make([]content.SearchResult, 0, MaxSearchResults)
	results = append(results, news...)
	results = append(results, movies...)
	if searchSelects(q.Type, content.KindSocial) {
		results = append(results, s.socialSearchResult(q.Q))
	}
	if len(results) == 0 {
		results = append(results, s.searchPlaceholder(q.Q))
	}
	if s.cfg.Shuffle {
		s.shuffle(len(results), func(i, j int) { results[i], results[j] = results[j], results[i] })
	}
	return lo.Slice(results, 0, MaxSearchResults)
}

func (s *Service) searchNews(ctx context.Context, q string) ([]content.SearchResult, error) {
	p := url.Values{}
	p.Set("apiKey", s.cfg.News.APIKey)
	p.Set("q", q)
	p.Set("language", "en")
	p.Set("sortBy", "relevancy")
	p.Set("pageSize", strconv.Itoa(searchPerSource))
	r := upstream.Request{
		Provider: ProviderNewsAPI,
		Endpoint: strings.TrimRight(s.cfg.News.BaseURL, "/") + "/everything",
		Params:   p,
		MaxAge:   NewsMaxAge,
	}

	var resp newsAPIResponse
	if err := s.client.GetJSON(ctx, r, &resp); err != nil {
		return nil, err
	}
	now := s.now()
	return lo.Map(lo.Slice(resp.Articles, 0, searchPerSource), func(a newsAPIArticle, i int) content.SearchResult {
		n := s.normalizeArticle(a, i, "", now)
		return content.SearchResult{
			ID:          n.ID,
			Type:        content.KindNews,
			Title:       n.Title,
			Description: n.Description,
			URL:         n.URL,
			URLToImage:  n.URLToImage,
			Source:      &content.Source{Name: n.Source.Name},
			PublishedAt: n.PublishedAt,
		}
	}), nil
}

func (s *Service) searchMovies(ctx context.Context, q string) ([]content.SearchResult, error) {
	p := url.Values{}
	p.Set("api_key", s.cfg.Movies.APIKey)
	p.Set("query", q)
	p.Set("language", "en-US")
	p.Set("page", "1")
	p.Set("include_adult", "false")
	r := upstream.Request{
		Provider: ProviderTMDB,
		Endpoint: strings.TrimRight(s.cfg.Movies.BaseURL, "/") + "/search/movie",
		Params:   p,
		MaxAge:   MovieMaxAge,
	}

	resp, err := s.fetchMovies(ctx, r)
	if err != nil {
		return nil, err
	}
	return lo.Map(lo.Slice(resp.Results, 0, searchPerSource), func(m tmdbMovie, _ int) content.SearchResult {
		n := normalizeMovie(m)
		return content.SearchResult{
			ID:          fmt.Sprintf("movie-search-%d", n.ID),
			Type:        content.KindMovie,
			Title:       n.Title,
			Overview:    n.Overview,
			PosterPath:  n.PosterPath,
			ReleaseDate: n.ReleaseDate,
			VoteAverage: lo.ToPtr(n.VoteAverage),
		}
	}), nil
}

func (s *Service) socialSearchResult(q string) content.SearchResult {
	now := s.now()
	tag := strings.Join(strings.Fields(q), "")
	return content.SearchResult{
		ID:        fmt.Sprintf("social-search-%d", now.UnixMilli()),
		Type:      content.KindSocial,
		Content:   fmt.Sprintf("Just found some amazing content about %q! This is exactly what I was looking for 🔥 #%s", q, tag),
		Author:    "ContentExplorer",
		Hashtags:  []string{tag, "discovery", "trending"},
		Likes:     s.likes(),
		Timestamp: s.timestamp(now),
	}
}
