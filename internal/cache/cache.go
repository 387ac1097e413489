// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides caching for dialogue line files and translation
// availability lookups. All implementations are thread-safe.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache errors
var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrCacheClosed = errors.New("cache closed")
)

// Cacher is the interface for cache implementations. Values are []byte to
// support both the in-memory and Redis backends.
type Cacher interface {
	// Get retrieves a value. Returns ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string
	// Prefix is prepended to all keys on the Redis backend.
	Prefix string
	// DefaultTTL is the default expiration for entries.
	DefaultTTL time.Duration
	// MaxSize caps memory cache entries (0 = unlimited).
	MaxSize int
}

// New creates a cache from the configuration: Redis when a URL is set,
// otherwise in-memory.
func New(cfg Config) (Cacher, error) {
	if cfg.RedisURL != "" {
		return NewRedisCache(RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: time.Minute,
	}), nil
}
