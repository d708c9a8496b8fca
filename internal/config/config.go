package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the API server. All values come
// from IRONLOG_-prefixed environment variables.
type Config struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`

	// PGDSN selects PostgreSQL persistence; when empty the server runs on
	// the in-memory store.
	PGDSN string `envconfig:"PG_DSN"`

	AuthSecret  string        `envconfig:"AUTH_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"30m"`
	TokenIssuer string        `envconfig:"TOKEN_ISSUER" default:"ironlog"`

	RateBurst    int   `envconfig:"RATE_BURST" default:"20"`
	RatePerSec   int   `envconfig:"RATE_PER_SEC" default:"10"`
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("IRONLOG", &cfg); err != nil {
		return nil, err
	}
	if cfg.AuthSecret == "" {
		return nil, errors.New("auth secret must be provided")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &cfg, nil
}
