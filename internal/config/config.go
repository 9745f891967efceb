// Package config loads runtime settings for the CDN backend from the
// environment.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the backend reads at startup.
type Config struct {
	Addr    string `env:"CDN_ADDR" envDefault:":8080"`
	Env     string `env:"CDN_ENV" envDefault:"development"`
	Version string `env:"CDN_VERSION" envDefault:"dev"`
	Commit  string `env:"CDN_COMMIT" envDefault:"unknown"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	Session SessionConfig `envPrefix:"CDN_SESSION_"`
	S3      S3Config      `envPrefix:"CDN_S3_"`

	// IPCURL is the base URL of the stats/related collaborator. Empty
	// disables it.
	IPCURL     string        `env:"CDN_IPC_URL"`
	IPCTimeout time.Duration `env:"CDN_IPC_TIMEOUT" envDefault:"5s"`

	// Links are rendered on the index page, e.g.
	// CDN_LINKS="github=https://github.com/x,discord=https://discord.gg/y".
	Links map[string]string `env:"CDN_LINKS" envSeparator:"," envKeyValSeparator:"="`

	// CORSOrigins may call the JSON API from a browser.
	CORSOrigins []string `env:"CDN_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	// APIRateLimit is the per-IP request budget of the JSON API per minute.
	APIRateLimit int `env:"CDN_API_RATE_LIMIT" envDefault:"120"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// SessionConfig controls the session cookie and its Redis lifetime.
type SessionConfig struct {
	CookieName string        `env:"COOKIE" envDefault:"cdn_session"`
	MaxAge     time.Duration `env:"MAX_AGE" envDefault:"720h"`
	// SecureSetting is the raw CDN_SESSION_SECURE value. Load resolves it
	// into Secure; when unset, cookies are Secure only in production.
	SecureSetting string `env:"SECURE"`
	Secure        bool
}

// S3Config points at the MinIO/S3 bucket holding file contents. Storage is
// disabled when Endpoint is empty.
type S3Config struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
}

// Enabled reports whether object storage has been configured.
func (s S3Config) Enabled() bool {
	return s.Endpoint != ""
}

// Production reports whether the backend runs in production mode.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Session.Secure = cfg.Production()
	if secure, err := strconv.ParseBool(cfg.Session.SecureSetting); err == nil {
		cfg.Session.Secure = secure
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
