// Package config loads client configuration from an optional config.yaml
// with environment-variable override.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Catalog  Catalog  `yaml:"catalog"`
	Auth     Auth     `yaml:"auth"`
	Bookings Bookings `yaml:"bookings"`
	Log      Log      `yaml:"log"`
}

// Catalog is the read-only flight/trip/airport source.
type Catalog struct {
	BaseURL string `yaml:"base_url" env:"SKYBOOK_CATALOG_URL" env-default:"https://qjxkpnrvwtdy.supabase.co/rest/v1"`
	APIKey  string `yaml:"api_key" env:"SKYBOOK_CATALOG_KEY" env-default:""`
}

// Auth is the identity provider issuing bearer tokens.
type Auth struct {
	BaseURL string `yaml:"base_url" env:"SKYBOOK_AUTH_URL" env-default:"https://qjxkpnrvwtdy.supabase.co/auth/v1"`
}

// Bookings is the REST endpoint holding the bookings of record.
type Bookings struct {
	BaseURL string `yaml:"base_url" env:"SKYBOOK_API_URL" env-default:"https://api.skybook.example.com/api"`
}

type Log struct {
	Level string `yaml:"level" env:"SKYBOOK_LOG_LEVEL" env-default:"info"`
}

// New reads config.yaml when present and falls back to environment
// variables, which also override any file values.
func New() (*Config, error) {
	cfg := &Config{}

	path := configFilePath()
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		_ = cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("SKYBOOK_CONFIG"); path != "" {
		return path
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/skybook-cli/config.yaml"
	}
	return "config.yaml"
}
