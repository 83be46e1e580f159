package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"database_url"`
	CORSOrigins string `yaml:"cors_origins"`
	TablePrefix string `yaml:"table_prefix"`
	// ContentRoot is the directory holding one file per document.
	ContentRoot string `yaml:"content_root"`
	// JWTSecret signs and verifies the HS256 bearer tokens.
	JWTSecret string `yaml:"jwt_secret"`
	// MaxVersions bounds retained snapshots per document.
	MaxVersions int `yaml:"max_versions"`
	// SnapshotIntervalMinutes is the minimum gap between automatic
	// snapshots of the same document.
	SnapshotIntervalMinutes int `yaml:"snapshot_interval_minutes"`
}

// Load builds the configuration from environment variables, then applies an
// optional YAML overlay file (INKSTONE_CONFIG, default ./inkstone.yaml) on
// top. The overlay is for local development; production deploys set env
// vars only.
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Environment:             env,
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		CORSOrigins:             getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:             getTablePrefix(env),
		ContentRoot:             getEnv("CONTENT_ROOT", "./data/documents"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		MaxVersions:             getEnvInt("MAX_DOCUMENT_VERSIONS", 20),
		SnapshotIntervalMinutes: getEnvInt("VERSION_INTERVAL_MINUTES", 5),
	}

	if err := applyOverlay(cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.MaxVersions < 1 {
		return nil, fmt.Errorf("MAX_DOCUMENT_VERSIONS must be positive, got %d", cfg.MaxVersions)
	}
	if cfg.SnapshotIntervalMinutes < 0 {
		return nil, fmt.Errorf("VERSION_INTERVAL_MINUTES must not be negative, got %d", cfg.SnapshotIntervalMinutes)
	}
	return cfg, nil
}

func applyOverlay(cfg *Config) error {
	path := getEnv("INKSTONE_CONFIG", "inkstone.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config overlay %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config overlay %s: %w", path, err)
	}
	return nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
