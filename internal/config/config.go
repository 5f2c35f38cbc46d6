package config

import (
	"os"
	"strconv"
	"time"

	"caseview/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Results ResultsConfig
	Session SessionConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
	Host string
}

// ResultsConfig holds settings for the results folder connection
type ResultsConfig struct {
	// Root is the initial results folder. Empty means start disconnected.
	Root string
	// DemoMode starts the viewer on synthetic data instead of a folder.
	DemoMode bool
	// DemoCases is the synthetic table size used in demo mode.
	DemoCases int
}

// SessionConfig holds per-browser session settings
type SessionConfig struct {
	TTL time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8870"),
			Host: getEnvOrDefault("HOST", "127.0.0.1"),
		},
		Results: ResultsConfig{
			Root:      os.Getenv("RESULTS_ROOT"),
			DemoMode:  getEnvBoolOrDefault("DEMO_MODE", false),
			DemoCases: getEnvIntOrDefault("DEMO_CASES", 25),
		},
		Session: SessionConfig{
			TTL: time.Duration(getEnvIntOrDefault("SESSION_TTL_MINUTES", 240)) * time.Minute,
		},
	}

	if cfg.Results.DemoCases <= 0 {
		return nil, errors.ConfigInvalid("DEMO_CASES must be a positive integer")
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, errors.ConfigInvalid("PORT must be numeric")
	}
	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
