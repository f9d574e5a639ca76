package service

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/content/upstream"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
	"github.com/samber/lo"
)

// FallbackNewsImage is used for articles without an image.
const FallbackNewsImage = "https://images.pexels.com/photos/518543/pexels-photo-518543.jpeg?auto=compress&cs=tinysrgb&w=500&h=300&fit=crop"

// Route is the upstream path chosen for a query.
type Route int

const (
	// RoutePopular is the provider's default listing.
	RoutePopular Route = iota
	// RouteFilter narrows the listing by category or genre.
	RouteFilter
	// RouteSearch is a free-text search.
	RouteSearch
)

func (r Route) String() string {
	switch r {
	case RouteFilter:
		return "filter"
	case RouteSearch:
		return "search"
	default:
		return "popular"
	}
}

// NewsCategories are the categories the headlines endpoint filters by.
// "general" is the unfiltered listing and is deliberately absent.
var NewsCategories = []string{"business", "entertainment", "health", "science", "sports", "technology"}

var newsCategorySet = lo.SliceToMap(NewsCategories, func(c string) (string, struct{}) { return c, struct{}{} })

// SelectNewsRoute picks the news endpoint for q.
func SelectNewsRoute(q content.NewsQuery) Route {
	if q.Q != "" {
		return RouteSearch
	}
	if _, ok := newsCategorySet[q.Category]; ok {
		return RouteFilter
	}
	return RoutePopular
}

func (s *Service) newsRequest(q content.NewsQuery) upstream.Request {
	p := url.Values{}
	p.Set("apiKey", s.cfg.News.APIKey)
	p.Set("pageSize", strconv.Itoa(q.PageSize))
	p.Set("page", strconv.Itoa(q.Page))

	endpoint := strings.TrimRight(s.cfg.News.BaseURL, "/")
	switch SelectNewsRoute(q) {
	case RouteSearch:
		endpoint += "/everything"
		p.Set("q", q.Q)
		p.Set("language", "en")
		p.Set("sortBy", "relevancy")
	case RouteFilter:
		endpoint += "/top-headlines"
		p.Set("country", q.Country)
		p.Set("category", q.Category)
	default:
		endpoint += "/top-headlines"
		p.Set("country", q.Country)
	}
	return upstream.Request{Provider: ProviderNewsAPI, Endpoint: endpoint, Params: p, MaxAge: NewsMaxAge}
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPISource struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type newsAPIArticle struct {
	Source      *newsAPISource `json:"source"`
	Author      *string        `json:"author"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	URL         *string        `json:"url"`
	URLToImage  *string        `json:"urlToImage"`
	PublishedAt *string        `json:"publishedAt"`
	Content     *string        `json:"content"`
}

// News returns articles for q, or the placeholder set when NewsAPI is not configured.
func (s *Service) News(ctx context.Context, q content.NewsQuery) ([]content.NewsItem, error) {
	q = q.WithDefaults()
	if !s.NewsConfigured() {
		logger.Warnf("NewsAPI key not configured; serving placeholder news")
		metrics.PlaceholderServed.WithLabelValues(string(content.KindNews)).Inc()
		return s.newsPlaceholders(q.Category), nil
	}

	var resp newsAPIResponse
	if err := s.client.GetJSON(ctx, s.newsRequest(q), &resp); err != nil {
		return nil, err
	}
	now := s.now()
	return lo.Map(resp.Articles, func(a newsAPIArticle, i int) content.NewsItem {
		return s.normalizeArticle(a, i, q.Category, now)
	}), nil
}

func (s *Service) normalizeArticle(a newsAPIArticle, idx int, category string, now time.Time) content.NewsItem {
	source := "Unknown Source"
	if a.Source != nil {
		source = orDefault(a.Source.Name, source)
	}
	return content.NewsItem{
		ID:          NewsID(lo.FromPtr(a.URL), lo.FromPtr(a.Title), idx),
		Title:       orDefault(a.Title, "Untitled"),
		Description: lo.FromPtr(a.Description),
		URL:         lo.FromPtr(a.URL),
		URLToImage:  orDefault(a.URLToImage, FallbackNewsImage),
		PublishedAt: orDefault(a.PublishedAt, s.timestamp(now)),
		Source:      content.Source{Name: source},
		Category:    category,
		Author:      a.Author,
		Content:     a.Content,
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NewsID derives a stable identifier for an article that has no native one.
// It prefers the URL, then the title, then the article's position.
func NewsID(rawURL, title string, idx int) string {
	fallback := "article-" + strconv.Itoa(idx)
	var base string
	if rawURL != "" {
		if _, rest, ok := strings.Cut(rawURL, "://"); ok {
			base = truncateRunes(strings.ReplaceAll(rest, "/", "-"), 50)
		}
	} else {
		base = truncateRunes(whitespaceRun.ReplaceAllString(title, "-"), 50)
	}
	if base == "" {
		base = fallback
	}
	return "news-" + url.PathEscape(base)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
