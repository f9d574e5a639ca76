package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/upstream"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
	"github.com/samber/lo"
)

// GenreIDs maps lower-case genre names to TMDB genre ids.
var GenreIDs = map[string]int{
	"action":          28,
	"adventure":       12,
	"animation":       16,
	"comedy":          35,
	"crime":           80,
	"documentary":     99,
	"drama":           18,
	"family":          10751,
	"fantasy":         14,
	"history":         36,
	"horror":          27,
	"music":           10402,
	"mystery":         9648,
	"romance":         10749,
	"sci-fi":          878,
	"science-fiction": 878,
	"thriller":        53,
	"war":             10752,
	"western":         37,
}

// GenreID looks up a genre name case-insensitively.
func GenreID(name string) (int, bool) {
	id, ok := GenreIDs[strings.ToLower(name)]
	return id, ok
}

// SelectMovieRoute picks the movie endpoint for q.
func SelectMovieRoute(q content.MovieQuery) Route {
	if q.Q != "" {
		return RouteSearch
	}
	if _, ok := GenreID(q.Genre); ok {
		return RouteFilter
	}
	return RoutePopular
}

func (s *Service) movieRequest(q content.MovieQuery) upstream.Request {
	p := url.Values{}
	p.Set("api_key", s.cfg.Movies.APIKey)
	p.Set("page", strconv.Itoa(q.Page))
	p.Set("language", "en-US")

	endpoint := strings.TrimRight(s.cfg.Movies.BaseURL, "/")
	switch SelectMovieRoute(q) {
	case RouteSearch:
		endpoint += "/search/movie"
		p.Set("query", q.Q)
		p.Set("include_adult", "false")
	case RouteFilter:
		id, _ := GenreID(q.Genre)
		endpoint += "/discover/movie"
		p.Set("with_genres", strconv.Itoa(id))
		p.Set("sort_by", "popularity.desc")
		p.Set("include_adult", "false")
		p.Set("include_video", "false")
	default:
		endpoint += "/movie/popular"
	}
	return upstream.Request{Provider: ProviderTMDB, Endpoint: endpoint, Params: p, MaxAge: MovieMaxAge}
}

type tmdbResponse struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []tmdbMovie `json:"results"`
}

type tmdbMovie struct {
	ID               int64    `json:"id"`
	Title            *string  `json:"title"`
	OriginalTitle    *string  `json:"original_title"`
	Overview         *string  `json:"overview"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	ReleaseDate      *string  `json:"release_date"`
	VoteAverage      *float64 `json:"vote_average"`
	VoteCount        *int     `json:"vote_count"`
	GenreIDs         []int    `json:"genre_ids"`
	Adult            *bool    `json:"adult"`
	OriginalLanguage *string  `json:"original_language"`
	Popularity       *float64 `json:"popularity"`
}

// Movies returns movies for q, or the placeholder set when TMDB is not configured.
func (s *Service) Movies(ctx context.Context, q content.MovieQuery) ([]content.Movie, error) {
	q = q.WithDefaults()
	if !s.MoviesConfigured() {
		logger.Warnf("TMDB API key not configured; serving placeholder movies")
		metrics.PlaceholderServed.WithLabelValues(string(content.KindMovie)).Inc()
		return s.moviePlaceholders(), nil
	}

	resp, err := s.fetchMovies(ctx, s.movieRequest(q))
	if err != nil {
		return nil, err
	}
	return lo.Map(resp.Results, func(m tmdbMovie, _ int) content.Movie { return normalizeMovie(m) }), nil
}

func (s *Service) fetchMovies(ctx context.Context, r upstream.Request) (*tmdbResponse, error) {
	var resp tmdbResponse
	if err := s.client.GetJSON(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func normalizeMovie(m tmdbMovie) content.Movie {
	title := orDefault(m.Title, orDefault(m.OriginalTitle, "Untitled"))
	genres := m.GenreIDs
	if genres == nil {
		genres = []int{}
	}
	return content.Movie{
		ID:               m.ID,
		Title:            title,
		Overview:         orDefault(m.Overview, "No overview available."),
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		ReleaseDate:      lo.FromPtr(m.ReleaseDate),
		VoteAverage:      lo.FromPtr(m.VoteAverage),
		VoteCount:        lo.FromPtr(m.VoteCount),
		GenreIDs:         genres,
		Adult:            lo.FromPtr(m.Adult),
		OriginalLanguage: orDefault(m.OriginalLanguage, "en"),
		Popularity:       lo.FromPtr(m.Popularity),
	}
}
