package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" default:"sqlite://app.db"`
	RedisURL    string `envconfig:"REDIS_URL"`
	ServerPort  string `envconfig:"SERVER_PORT" default:":8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Account listing bounds
	AccountListDefaultLimit int `envconfig:"ACCOUNT_LIST_DEFAULT_LIMIT" default:"100"`
	AccountListMaxLimit     int `envconfig:"ACCOUNT_LIST_MAX_LIMIT" default:"1000"`

	AccountCacheTTL time.Duration `envconfig:"ACCOUNT_CACHE_TTL" default:"5m"`

	// Rate limiting (only active when Redis is configured)
	RateLimitMaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	RateLimitWindow      time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func Load() (*Config, error) {
	// .env is optional; containers pass plain environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment only")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) validate() error {
	if c.AccountListMaxLimit < 1 {
		return fmt.Errorf("ACCOUNT_LIST_MAX_LIMIT must be positive, got %d", c.AccountListMaxLimit)
	}
	if c.AccountListDefaultLimit < 1 || c.AccountListDefaultLimit > c.AccountListMaxLimit {
		return fmt.Errorf("ACCOUNT_LIST_DEFAULT_LIMIT must be between 1 and %d, got %d",
			c.AccountListMaxLimit, c.AccountListDefaultLimit)
	}
	// invalidated cache entries expire with this TTL
	if c.AccountCacheTTL <= 0 {
		return fmt.Errorf("ACCOUNT_CACHE_TTL must be positive, got %s", c.AccountCacheTTL)
	}
	return nil
}
