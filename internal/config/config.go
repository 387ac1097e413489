// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"LN_DB_PATH" envDefault:"./data/linguanova.db"`
	ServerHost string `env:"LN_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"LN_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"LN_ENV" envDefault:"development"`
	LogLevel   string `env:"LN_LOG_LEVEL" envDefault:"info"`

	// DataDir holds the dialogue library: dialogues/<lang>/<key>.txt line
	// files and audio/<lang>/<key>/ recordings.
	DataDir string `env:"LN_DATA_DIR" envDefault:"./data"`
	// UploadsDir holds per-user uploads, including imported package media
	// under packages/<owner>/<name>/media.
	UploadsDir string `env:"LN_UPLOADS_DIR" envDefault:"./uploads"`

	// Dialogue library languages
	SourceLanguage        string   `env:"LN_SOURCE_LANGUAGE" envDefault:"en"`
	DefaultTargetLanguage string   `env:"LN_DEFAULT_TARGET_LANGUAGE" envDefault:"pt"`
	Languages             []string `env:"LN_LANGUAGES" envDefault:"en,pt,es,fr,de,it,ja,zh" envSeparator:","`

	// SyncSchedule is the cron expression for the nightly deck reconcile.
	SyncSchedule string `env:"LN_SYNC_SCHEDULE" envDefault:"0 3 * * *"`

	// Cache configuration
	RedisURL     string `env:"LN_REDIS_URL"`                        // Optional Redis URL for distributed caching
	CachePrefix  string `env:"LN_CACHE_PREFIX" envDefault:"ln:"`    // Redis key prefix
	CacheTTL     int    `env:"LN_CACHE_TTL" envDefault:"300"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"LN_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.SourceLanguage = strings.ToLower(strings.TrimSpace(cfg.SourceLanguage))
	cfg.DefaultTargetLanguage = strings.ToLower(strings.TrimSpace(cfg.DefaultTargetLanguage))
	for i, lang := range cfg.Languages {
		cfg.Languages[i] = strings.ToLower(strings.TrimSpace(lang))
	}

	if cfg.SourceLanguage == cfg.DefaultTargetLanguage {
		return nil, fmt.Errorf("LN_DEFAULT_TARGET_LANGUAGE must differ from LN_SOURCE_LANGUAGE (%q)", cfg.SourceLanguage)
	}

	return cfg, nil
}
