package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/upstream"
	"github.com/samber/lo"
)

// Freshness windows advertised to providers and used as cache TTLs.
const (
	NewsMaxAge  = 300 * time.Second
	MovieMaxAge = 3600 * time.Second
)

// Provider names used in logs, metrics and cache keys.
const (
	ProviderNewsAPI = "newsapi"
	ProviderTMDB    = "tmdb"
)

// isoMillis matches the timestamp shape the dashboard already renders.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Fetcher performs one upstream JSON GET. *upstream.Client satisfies it.
type Fetcher interface {
	GetJSON(ctx context.Context, r upstream.Request, out interface{}) error
}

// Config selects providers and search ordering.
type Config struct {
	News    config.ProviderConfig
	Movies  config.ProviderConfig
	Shuffle bool
}

// FromContentConfig builds a service Config from application configuration.
func FromContentConfig(c config.ContentConfig) Config {
	return Config{News: c.News, Movies: c.Movies, Shuffle: c.SearchShuffle}
}

// Service answers content queries against the configured providers, falling
// back to placeholder content when a provider has no usable credential.
type Service struct {
	cfg     Config
	client  Fetcher
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
	likes   func() int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithShuffler overrides the permutation used for shuffled search results.
func WithShuffler(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Service) { s.shuffle = shuffle }
}

func New(cfg Config, client Fetcher, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		client:  client,
		now:     time.Now,
		shuffle: rand.Shuffle,
		likes:   func() int { return rand.IntN(500) + 50 },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func configured(p config.ProviderConfig) bool {
	return p.APIKey != "" && p.APIKey != p.Placeholder
}

// NewsConfigured reports whether news queries reach the provider.
func (s *Service) NewsConfigured() bool { return configured(s.cfg.News) }

// MoviesConfigured reports whether movie queries reach the provider.
func (s *Service) MoviesConfigured() bool { return configured(s.cfg.Movies) }

// Fetch dispatches a query of any kind and returns its items.
func (s *Service) Fetch(ctx context.Context, q content.Query) ([]content.Item, error) {
	switch q := q.(type) {
	case content.NewsQuery:
		items, err := s.News(ctx, q)
		if err != nil {
			return nil, err
		}
		return toItems(items), nil
	case content.MovieQuery:
		items, err := s.Movies(ctx, q)
		if err != nil {
			return nil, err
		}
		return toItems(items), nil
	case content.SocialQuery:
		return toItems(s.Social(q)), nil
	case content.SearchQuery:
		return toItems(s.Search(ctx, q)), nil
	default:
		return nil, fmt.Errorf("unsupported query kind %T", q)
	}
}

func toItems[T content.Item](in []T) []content.Item {
	return lo.Map(in, func(it T, _ int) content.Item { return it })
}

func (s *Service) timestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// orDefault returns *p unless it is nil or empty.
func orDefault(p *string, def string) string {
	if v := lo.FromPtr(p); v != "" {
		return v
	}
	return def
}
