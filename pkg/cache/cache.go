// Package cache provides byte caches for fetched documents and rendered
// artifacts.
//
// Four backends implement [Cache]:
//   - [NullCache]: stores nothing; used with --no-cache
//   - [FileCache]: JSON entry files under the XDG cache directory (CLI default)
//   - [MemoryCache]: in-process LRU, for the HTTP server
//   - [RedisCache]: shared cache for several server instances
//
// Keys come from a [Keyer] so that HTTP responses, encoded documents and
// rendered artifacts never collide. [Open] picks a backend from [Config].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend string // one of the Backend* names; "" means file

	Dir  string // file backend directory
	Size int    // memory backend capacity (entries)

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open creates the backend named by cfg.Backend. Every backend except
// none is wrapped with [WithHooks].
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case "", BackendFile:
		c, err = NewFileCache(cfg.Dir)
	case BackendMemory:
		c, err = NewMemoryCache(cfg.Size)
	case BackendRedis:
		c, err = NewRedisCache(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return WithHooks(c), nil
}
