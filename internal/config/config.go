// Package config provides configuration loading from a .env file, an
// optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultExtension          = "json"
	DefaultQueryCacheMaxItems = 128
	DefaultLogLevel           = "warn"
)

// Config holds all configuration for the scanner.
type Config struct {
	Workers            int    `yaml:"workers"`               // JSONKEYS_WORKERS, default runtime.NumCPU()
	Extension          string `yaml:"extension"`             // JSONKEYS_EXTENSION, default "json"
	QueryCacheMaxItems int    `yaml:"query_cache_max_items"` // QUERY_CACHE_MAX_ITEMS, default 128
	QueryMaxFiles      int    `yaml:"query_max_files"`       // QUERY_MAX_FILES, default 0 (unlimited)

	// Logging configuration
	LogLevel      string `yaml:"log_level"`        // LOG_LEVEL, default "warn"
	LogFile       string `yaml:"log_file"`         // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`  // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    `yaml:"log_max_backups"`  // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    `yaml:"log_max_age_days"` // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   `yaml:"log_compress"`     // LOG_COMPRESS, default true
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:            runtime.NumCPU(),
		Extension:          DefaultExtension,
		QueryCacheMaxItems: DefaultQueryCacheMaxItems,
		QueryMaxFiles:      0,

		LogLevel:      DefaultLogLevel,
		LogFile:       "",
		LogMaxSizeMB:  10,
		LogMaxBackups: 5,
		LogMaxAgeDays: 28,
		LogCompress:   true,
	}
}

// Load builds the configuration. Values are layered, later layers winning:
// defaults, the YAML file at path (skipped when path is empty), then
// environment variables. A .env file in the working directory is loaded
// into the environment first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("JSONKEYS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envInt("JSONKEYS_WORKERS", &c.Workers)
	envString("JSONKEYS_EXTENSION", &c.Extension)
	envInt("QUERY_CACHE_MAX_ITEMS", &c.QueryCacheMaxItems)
	envInt("QUERY_MAX_FILES", &c.QueryMaxFiles)

	envString("LOG_LEVEL", &c.LogLevel)
	envString("LOG_FILE", &c.LogFile)
	envInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	envInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	envInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	envBool("LOG_COMPRESS", &c.LogCompress)
}

// The env helpers leave *dst alone when the variable is unset, empty or
// not parseable.

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		*dst = n
	}
}

func envBool(key string, dst *bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	}
}
