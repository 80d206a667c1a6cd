package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration. Values come from the environment
// (optionally seeded from a .env file); cobra flags override them.
type Config struct {
	// BaseURL is the Remote Activity Service root.
	BaseURL string        `env:"ACTIVITIES_URL"     envDefault:"http://127.0.0.1:8000"`
	Timeout time.Duration `env:"ACTIVITIES_TIMEOUT" envDefault:"10s"`
	// FeedbackTTL, when non-zero, replaces the per-operation feedback delays.
	FeedbackTTL time.Duration `env:"ACTIVITIES_FEEDBACK_TTL"`

	LogLevel  string `env:"ACTIVITIES_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"ACTIVITIES_LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"ACTIVITIES_LOG_FILE"`

	WebAddr string `env:"ACTIVITIES_WEB_ADDR" envDefault:"127.0.0.1:3334"`
	DevAddr string `env:"ACTIVITIES_DEV_ADDR" envDefault:"127.0.0.1:8000"`
	// DevDB is the dev server's sqlite path; empty means in-memory.
	DevDB string `env:"ACTIVITIES_DEV_DB"`
}

// Load reads .env files (missing ones are ignored) and then parses the environment.
// It does not validate: flags may still override what the environment set.
func Load(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return fmt.Errorf("config: invalid service url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: service url must be http(s): %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("config: service url has no host: %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.FeedbackTTL < 0 {
		return errors.New("config: feedback ttl must not be negative")
	}
	return nil
}
