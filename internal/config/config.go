package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Yahoo    YahooConfig
	Cache    CacheConfig
	Jobs     JobsConfig
	Log      LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `env:"SERVER_PORT" envDefault:"8000"`
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration.
// Driver is either "sqlite" or "pgx"; DSN is a file path for sqlite and a
// connection string for postgres.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DB_DSN" envDefault:"./data/portfolio.db"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost"`
}

// AuthConfig holds token signing keys and lifetimes.
type AuthConfig struct {
	JWTSecret               string        `env:"JWT_SECRET,notEmpty"`
	FernetKey               string        `env:"FERNET_KEY"`
	AccessTokenTTL          time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	RefreshedAccessTokenTTL time.Duration `env:"REFRESHED_ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL         time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	CookieSecure            bool          `env:"COOKIE_SECURE" envDefault:"true"`
}

// YahooConfig holds the market data endpoints.
type YahooConfig struct {
	ChartURL   string        `env:"YAHOO_CHART_URL" envDefault:"https://query1.finance.yahoo.com"`
	SummaryURL string        `env:"YAHOO_SUMMARY_URL" envDefault:"https://query2.finance.yahoo.com"`
	CookieURL  string        `env:"YAHOO_COOKIE_URL" envDefault:"https://fc.yahoo.com"`
	Timeout    time.Duration `env:"YAHOO_TIMEOUT" envDefault:"10s"`
	Debug      bool          `env:"YAHOO_DEBUG" envDefault:"false"`
}

// CacheConfig holds the key/value store settings. An empty RedisAddr selects
// the in-memory store.
type CacheConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix     string        `env:"CACHE_KEY_PREFIX" envDefault:"portfolio"`
	QuoteTTL      time.Duration `env:"CACHE_QUOTE_TTL" envDefault:"1m"`
	ProfileTTL    time.Duration `env:"CACHE_PROFILE_TTL" envDefault:"24h"`
	GuestTTL      time.Duration `env:"GUEST_PORTFOLIO_TTL" envDefault:"720h"`
}

// JobsConfig holds background job settings. An empty schedule disables the job.
type JobsConfig struct {
	QuoteRefreshSchedule    string `env:"QUOTE_REFRESH_SCHEDULE" envDefault:"@every 5m"`
	QuoteRefreshConcurrency int    `env:"QUOTE_REFRESH_CONCURRENCY" envDefault:"4"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshedAccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Jobs.QuoteRefreshConcurrency < 1 {
		c.Jobs.QuoteRefreshConcurrency = 1
	}
	return nil
}
