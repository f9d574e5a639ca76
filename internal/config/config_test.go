package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "pulseboard_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.MongoDB.Database != "pulseboard_test" {
		t.Fatalf("unexpected database: %s", cfg.MongoDB.Database)
	}
}

func TestLoadConfig_ContentDefaults(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "")
	t.Setenv("TMDB_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	c := cfg.Content
	if c.News.BaseURL != "https://newsapi.org/v2" {
		t.Fatalf("unexpected news base url: %s", c.News.BaseURL)
	}
	if c.Movies.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("unexpected tmdb base url: %s", c.Movies.BaseURL)
	}
	if c.News.APIKey != "" || c.Movies.APIKey != "" {
		t.Fatalf("expected unset api keys, got %q / %q", c.News.APIKey, c.Movies.APIKey)
	}
	if c.News.Placeholder != NewsAPIPlaceholderKey || c.Movies.Placeholder != TMDBPlaceholderKey {
		t.Fatalf("placeholder sentinels not wired: %+v", c)
	}
	if c.RetryAttempts != 3 {
		t.Fatalf("RetryAttempts = %d, want 3", c.RetryAttempts)
	}
	if c.RetryInitial != 500*time.Millisecond {
		t.Fatalf("RetryInitial = %s, want 500ms", c.RetryInitial)
	}
	if !c.SearchShuffle {
		t.Fatalf("search shuffle should default to true")
	}
	if c.CacheEnabled {
		t.Fatalf("content cache should default to disabled")
	}
}

func TestLoadConfig_ContentOverrides(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "news-key")
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("UPSTREAM_RETRY_ATTEMPTS", "5")
	t.Setenv("SEARCH_SHUFFLE", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Content.News.APIKey != "news-key" || cfg.Content.Movies.APIKey != "tmdb-key" {
		t.Fatalf("api keys not read from env: %+v", cfg.Content)
	}
	if cfg.Content.RetryAttempts != 5 {
		t.Fatalf("RetryAttempts = %d, want 5", cfg.Content.RetryAttempts)
	}
	if cfg.Content.SearchShuffle {
		t.Fatalf("SEARCH_SHUFFLE=false not honored")
	}
}

func TestLoadConfig_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("origins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Fatalf("origins = %v, want %v", cfg.Server.CORSOrigins, want)
		}
	}
}

func TestLoadConfig_JWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.JWT.Configured() {
		t.Fatalf("empty JWT_SECRET must not count as configured")
	}

	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.JWT.Configured() {
		t.Fatalf("expected JWT to be configured")
	}
}
