// Package config loads SDK and CLI settings from a YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/castline/castline-go/internal/identity"
)

// Config holds everything the clients and the CLI need. Precedence is
// defaults < config file < environment.
type Config struct {
	BaseURL  string `yaml:"base_url" env:"CASTLINE_BASE_URL"`
	APIToken string `yaml:"api_token" env:"CASTLINE_API_TOKEN"`

	// AccountID selects a shared mailbox; 0 means the user's own mailbox.
	AccountID int64 `yaml:"account_id" env:"CASTLINE_ACCOUNT_ID"`

	Debounce       time.Duration `yaml:"debounce" env:"CASTLINE_DEBOUNCE"`
	PollInterval   time.Duration `yaml:"poll_interval" env:"CASTLINE_POLL_INTERVAL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CASTLINE_REQUEST_TIMEOUT"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"CASTLINE_RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"CASTLINE_RATE_LIMIT_BURST"`
}

func defaults() *Config {
	return &Config{
		BaseURL:        "http://localhost:8485",
		Debounce:       2 * time.Second,
		PollInterval:   60 * time.Second,
		RequestTimeout: 15 * time.Second,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
}

// Load reads the config file at path (or $HOME/.castline.yaml when path is
// empty and that file exists), then applies environment overrides. A .env
// file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".castline.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is required")
	}
	return cfg, nil
}

// Identity derives the ownership context from the configured account.
func (c *Config) Identity() identity.Identity {
	if c.AccountID > 0 {
		return identity.SharedAccount(c.AccountID)
	}
	return identity.Self()
}
