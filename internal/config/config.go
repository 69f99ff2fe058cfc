// Package config loads application configuration from defaults, an optional
// YAML file, and environment variables, in increasing order of precedence.
// A .env file in the working directory is honored if present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doorlist/doorlist/internal/clock"
)

// Config holds the application configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`
	// Timezone is the IANA zone name all timestamps are rendered in.
	Timezone string `yaml:"timezone"`
	// ExportDir is where export snapshots are written.
	// Empty means the user's desktop directory.
	ExportDir string `yaml:"export_dir"`
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

func defaults() *Config {
	return &Config{
		DBPath:   "doorlist.db",
		Timezone: clock.DefaultZone,
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (optional; an
// empty path or missing file is not an error), and environment overrides.
func Load(path string) (*Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DBPath = getEnv("DOORLIST_DB", cfg.DBPath)
	cfg.Timezone = getEnv("DOORLIST_TIMEZONE", cfg.Timezone)
	cfg.ExportDir = getEnv("DOORLIST_EXPORT_DIR", cfg.ExportDir)
	cfg.LogLevel = getEnv("DOORLIST_LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
