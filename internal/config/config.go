// Package config loads server configuration from an optional TOML file
// with environment-variable overrides. Everything has a usable default
// except the JWT secret, which must be provided.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    Server    `toml:"server"`
	Database  Database  `toml:"database"`
	Auth      Auth      `toml:"auth"`
	RateLimit RateLimit `toml:"rate_limit"`
}

type Server struct {
	Port int `toml:"port"`
}

type Database struct {
	Path string `toml:"path"`
}

type Auth struct {
	JWTSecret          string `toml:"jwt_secret"`
	GitHubClientID     string `toml:"github_client_id"`
	GitHubClientSecret string `toml:"github_client_secret"`
	GitHubCallbackURL  string `toml:"github_callback_url"`
}

type RateLimit struct {
	// GenerationPerMinute caps card-generation requests per IP per minute.
	GenerationPerMinute int `toml:"generation_per_minute"`
	// LoginBurst is the login token-bucket size per IP.
	LoginBurst int `toml:"login_burst"`
	// LoginPerMinute is the login bucket refill rate.
	LoginPerMinute float64 `toml:"login_per_minute"`
}

// Default returns the configuration used when no file and no env vars are
// present. The JWT secret intentionally has no default.
func Default() Config {
	return Config{
		Server:   Server{Port: 8080},
		Database: Database{Path: "cardforge.db"},
		RateLimit: RateLimit{
			GenerationPerMinute: 30,
			LoginBurst:          5,
			LoginPerMinute:      10,
		},
	}
}

// Load builds the effective configuration: defaults, then the TOML file at
// path (skipped if path is empty or the file doesn't exist), then env
// vars. Later layers win.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the config. Env wins over
// the file so deployments can override a baked-in config.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("GITHUB_CLIENT_ID"); v != "" {
		c.Auth.GitHubClientID = v
	}
	if v := os.Getenv("GITHUB_CLIENT_SECRET"); v != "" {
		c.Auth.GitHubClientSecret = v
	}
	if v := os.Getenv("GITHUB_CALLBACK_URL"); v != "" {
		c.Auth.GitHubCallbackURL = v
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("config: database path is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: jwt_secret must be at least 16 characters (set JWT_SECRET)")
	}
	// GitHub OAuth is optional, but partial credentials are a
	// misconfiguration, not a choice.
	hasID, hasSecret := c.Auth.GitHubClientID != "", c.Auth.GitHubClientSecret != ""
	if hasID != hasSecret {
		return fmt.Errorf("config: github_client_id and github_client_secret must be set together")
	}
	if hasID && c.Auth.GitHubCallbackURL == "" {
		return fmt.Errorf("config: github_callback_url is required when GitHub OAuth is enabled")
	}
	if c.RateLimit.GenerationPerMinute < 1 {
		return fmt.Errorf("config: generation_per_minute must be positive")
	}
	return nil
}

// GitHubEnabled reports whether OAuth credentials are configured.
func (c *Config) GitHubEnabled() bool {
	return c.Auth.GitHubClientID != ""
}
