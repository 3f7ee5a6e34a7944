// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// devSecret is used when JWT_SECRET is unset. Fine for local runs only.
const devSecret = "dev-secret-change-me"

type Config struct {
	App struct {
		Port            int           `envconfig:"PORT" default:"8080"`
		LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
		ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
		CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"./data/owwn.db"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	}

	Redis struct {
		Addr       string        `envconfig:"REDIS_ADDR"`
		Password   string        `envconfig:"REDIS_PASSWORD"`
		DB         int           `envconfig:"REDIS_DB" default:"0"`
		BalanceTTL time.Duration `envconfig:"BALANCE_CACHE_TTL" default:"10m"`
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// CacheEnabled reports whether a Redis balance cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

// UsingDevSecret reports whether JWT_SECRET fell back to the built-in value.
func (c *Config) UsingDevSecret() bool {
	return c.Auth.JWTSecret == devSecret
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devSecret
	}
	cfg.App.LogLevel = strings.ToLower(cfg.App.LogLevel)
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.App.Port)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}

	return &cfg, nil
}
