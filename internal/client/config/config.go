package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the shopkeeper console.
type Config struct {
	// ServerBaseURL is the REST root, e.g. http://127.0.0.1:8000/api.
	ServerBaseURL string `env:"SHOPKEEPER_SERVER_URL"`
	// RequestTimeout bounds every backend call.
	RequestTimeout time.Duration `env:"SHOPKEEPER_REQUEST_TIMEOUT"`
	// OnlineCheckInterval is how often the console probes the backend.
	OnlineCheckInterval time.Duration `env:"SHOPKEEPER_ONLINE_CHECK_INTERVAL"`
	// SessionDBPath is the SQLite file holding the persisted session.
	SessionDBPath string `env:"SHOPKEEPER_SESSION_DB"`
	PageSize      int    `env:"SHOPKEEPER_PAGE_SIZE"`
	LogLevel      string `env:"SHOPKEEPER_LOG_LEVEL"`
	// RateLimit is outbound requests per second, 0 for no limit.
	RateLimit float64 `env:"SHOPKEEPER_RATE_LIMIT"`
	RateBurst int     `env:"SHOPKEEPER_RATE_BURST"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000/api"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.SessionDBPath = "shopkeeper.db"
	c.PageSize = 5
	c.LogLevel = "warn"
	c.RateLimit = 10
	c.RateBurst = 5
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server URL %q must be an absolute http(s) URL", c.ServerBaseURL)
	}
	switch {
	case c.RequestTimeout <= 0:
		return errors.New("request timeout must be positive")
	case c.OnlineCheckInterval <= 0:
		return errors.New("online check interval must be positive")
	case c.SessionDBPath == "":
		return errors.New("session database path is required")
	case c.PageSize <= 0:
		return errors.New("page size must be positive")
	case c.RateLimit < 0:
		return errors.New("rate limit must not be negative")
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file, then the environment
// (optionally seeded from a dotenv file), then command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
