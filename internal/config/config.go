package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/linkforge/shortlink/internal/shortener"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Shortener shortener.Config
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port    string
	BaseURL string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds token-related configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// RateLimitConfig holds the redirect-path rate limit configuration
type RateLimitConfig struct {
	// Redirect is an ulule/limiter formatted rate, e.g. "100-M"
	// for 100 requests per minute per client IP.
	Redirect string
}

// envDefaults carries environment-provided defaults for CLI flags.
// A .env file is honored when present.
type envDefaults struct {
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DBPath      string `env:"DB_PATH" envDefault:"shortlink.db"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	RedirectRPM string `env:"REDIRECT_RATE" envDefault:"120-M"`
}

// EnvDefaults reads flag defaults from the environment, loading .env first
// when one exists.
func EnvDefaults() (port, baseURL, dbPath, jwtSecret, logLevel, redirectRate string) {
	_ = godotenv.Load()

	defaults := envDefaults{}
	if err := env.Parse(&defaults); err != nil {
		// Parsing only fails on malformed struct tags; fall back to the
		// zero values and let validation catch anything unusable.
		defaults = envDefaults{}
	}

	return defaults.Port, defaults.BaseURL, defaults.DBPath,
		defaults.JWTSecret, defaults.LogLevel, defaults.RedirectRPM
}

// New creates a new config with the given parameters
func New(port, baseURL, dbPath, jwtSecret string, tokenTTL time.Duration,
	logLevel string, pretty bool, redirectRate string, shortenerConfig shortener.Config) (*Config, error) {

	cfg := &Config{
		Server: ServerConfig{
			Port:    port,
			BaseURL: baseURL,
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
			TokenTTL:  tokenTTL,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Pretty: pretty,
		},
		RateLimit: RateLimitConfig{
			Redirect: redirectRate,
		},
		Shortener: shortenerConfig,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Server.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got: %v", c.Auth.TokenTTL)
	}

	if c.RateLimit.Redirect == "" {
		return fmt.Errorf("redirect rate limit cannot be empty")
	}

	return nil
}
