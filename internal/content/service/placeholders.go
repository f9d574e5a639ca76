package service

import (
	"fmt"
	"time"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/samber/lo"
)

func (s *Service) newsPlaceholders(category string) []content.NewsItem {
	now := s.now()
	return []content.NewsItem{
		{
			ID:          "mock-news-1",
			Title:       "API Key Required - Please Configure NewsAPI",
			Description: "To see real news articles, please add your NewsAPI key to the .env.local file. Visit https://newsapi.org to get a free API key.",
			URL:         "https://newsapi.org",
			URLToImage:  FallbackNewsImage,
			PublishedAt: s.timestamp(now),
			Source:      content.Source{Name: "Configuration Notice"},
			Category:    category,
			Author:      lo.ToPtr("System"),
			Content:     lo.ToPtr("Please configure your NewsAPI key to see real news content."),
		},
		{
			ID:          "mock-news-2",
			Title:       "Sample News Article",
			Description: "This is a sample news article that appears when the API key is not configured.",
			URL:         "#",
			URLToImage:  "https://images.pexels.com/photos/97050/pexels-photo-97050.jpeg?auto=compress&cs=tinysrgb&w=500&h=300&fit=crop",
			PublishedAt: s.timestamp(now.Add(-time.Hour)),
			Source:      content.Source{Name: "Sample Source"},
			Category:    category,
			Author:      lo.ToPtr("Sample Author"),
			Content:     lo.ToPtr("This is sample content for demonstration purposes."),
		},
	}
}

func (s *Service) moviePlaceholders() []content.Movie {
	return []content.Movie{
		{
			ID:               1,
			Title:            "API Key Required - Please Configure TMDB",
			Overview:         "To see real movie data, please add your TMDB API key to the .env.local file. Visit https://www.themoviedb.org/settings/api to get a free API key.",
			ReleaseDate:      s.now().UTC().Format(time.DateOnly),
			GenreIDs:         []int{},
			OriginalLanguage: "en",
		},
		{
			ID:               2,
			Title:            "Sample Movie",
			Overview:         "This is a sample movie that appears when the TMDB API key is not configured.",
			ReleaseDate:      "2024-01-01",
			VoteAverage:      7.5,
			VoteCount:        100,
			GenreIDs:         []int{28, 35},
			OriginalLanguage: "en",
			Popularity:       50,
		},
	}
}

// searchPlaceholder explains why a search produced nothing.
func (s *Service) searchPlaceholder(q string) content.SearchResult {
	now := s.now()
	return content.SearchResult{
		ID:          fmt.Sprintf("mock-search-%d", now.UnixMilli()),
		Type:        content.KindNews,
		Title:       fmt.Sprintf("Search results for %q - API Configuration Required", q),
		Description: "To see real search results, please configure your NewsAPI and TMDB API keys in the .env.local file.",
		URL:         "#",
		URLToImage:  FallbackNewsImage,
		Source:      &content.Source{Name: "Configuration Notice"},
		PublishedAt: s.timestamp(now),
	}
}
