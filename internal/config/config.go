package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/spf13/viper"
)

const (
	// Placeholder values shipped in the example env file. A key equal to one of
	// these is treated the same as an unset key.
	NewsAPIPlaceholderKey = "your_actual_newsapi_key_here"
	TMDBPlaceholderKey    = "your_actual_tmdb_api_key_here"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	OAuth     OAuthConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Content   ContentConfig
	State     StateConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// OAuthConfig configures ID-token verification for OAuth sign-in.
type OAuthConfig struct {
	Issuer   string
	ClientID string
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// ProviderConfig describes one upstream content API.
type ProviderConfig struct {
	BaseURL     string
	APIKey      string
	Placeholder string
}

type ContentConfig struct {
	News            ProviderConfig
	Movies          ProviderConfig
	RetryAttempts   int
	RetryInitial    time.Duration
	UpstreamTimeout time.Duration
	CacheEnabled    bool
	SearchShuffle   bool
}

// StateConfig controls where the in-memory user state is snapshotted.
type StateConfig struct {
	SnapshotKey string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("MONGODB_DATABASE", "pulseboard")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("OAUTH_ISSUER", "https://accounts.google.com")
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	viper.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("NEWSAPI_BASE_URL", "https://newsapi.org/v2")
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("UPSTREAM_RETRY_ATTEMPTS", 3)
	viper.SetDefault("UPSTREAM_RETRY_INITIAL_DELAY_MS", 500)
	viper.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 30)
	viper.SetDefault("CONTENT_CACHE_ENABLED", false)
	viper.SetDefault("SEARCH_SHUFFLE", true)
	viper.SetDefault("STATE_SNAPSHOT_KEY", "state/user-state.json")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		OAuth: OAuthConfig{
			Issuer:   viper.GetString("OAUTH_ISSUER"),
			ClientID: viper.GetString("OAUTH_CLIENT_ID"),
		},
		JWT: JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(viper.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Content: ContentConfig{
			News: ProviderConfig{
				BaseURL:     viper.GetString("NEWSAPI_BASE_URL"),
				APIKey:      os.Getenv("NEWSAPI_KEY"),
				Placeholder: NewsAPIPlaceholderKey,
			},
			Movies: ProviderConfig{
				BaseURL:     viper.GetString("TMDB_BASE_URL"),
				APIKey:      os.Getenv("TMDB_API_KEY"),
				Placeholder: TMDBPlaceholderKey,
			},
			RetryAttempts:   viper.GetInt("UPSTREAM_RETRY_ATTEMPTS"),
			RetryInitial:    time.Duration(viper.GetInt("UPSTREAM_RETRY_INITIAL_DELAY_MS")) * time.Millisecond,
			UpstreamTimeout: time.Duration(viper.GetInt("UPSTREAM_TIMEOUT_SECONDS")) * time.Second,
			CacheEnabled:    viper.GetBool("CONTENT_CACHE_ENABLED"),
			SearchShuffle:   viper.GetBool("SEARCH_SHUFFLE"),
		},
		State: StateConfig{
			SnapshotKey: viper.GetString("STATE_SNAPSHOT_KEY"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; account and /api routes are disabled")
	}
	if cfg.Content.RetryAttempts < 1 {
		cfg.Content.RetryAttempts = 1
	}

	return cfg, nil
}

// splitList parses a comma separated env value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Configured reports whether access tokens can be issued and verified.
// Without a secret the account routes stay unmounted.
func (j JWTConfig) Configured() bool {
	return j.Secret != ""
}
