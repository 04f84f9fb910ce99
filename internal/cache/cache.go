// Package cache provides a small Cache interface plus in-memory and
// Redis-backed implementations. This module only ever caches one kind of
// value — a FrameGeometry keyed by its TaskSet's hash (GeometryCache, in
// geometry_cache.go) — so the interface is trimmed to the operations that
// path uses.
package cache

import (
	"context"
	"errors"
	"time"

	"cyclicexec/internal/config"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrKeyNotFound is returned when a requested key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Cache is the common surface GeometryCache is built on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options configures cache construction.
type Options struct {
	Backend    string
	DefaultTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// DefaultOptions returns sensible defaults: in-memory, 5 minute TTL.
func DefaultOptions() *Options {
	return &Options{
		Backend:       BackendMemory,
		DefaultTTL:    5 * time.Minute,
		RedisAddr:     "localhost:6379",
		RedisPoolSize: 10,
	}
}

// FromConfig maps the cache config section onto Options. The pool size is
// left zero so the Redis constructor's default applies.
func FromConfig(cfg config.CacheConfig) *Options {
	return &Options{
		Backend:       cfg.Driver,
		DefaultTTL:    cfg.DefaultTTL,
		RedisAddr:     cfg.Address(),
		RedisPassword: cfg.Password,
		RedisDB:       cfg.DB,
	}
}

// New builds a Cache per opts.Backend.
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch opts.Backend {
	case BackendRedis:
		return NewRedisCache(opts)
	default:
		return NewMemoryCache(opts), nil
	}
}
