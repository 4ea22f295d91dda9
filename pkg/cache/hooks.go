package cache

import (
	"context"
	"time"

	"github.com/matzehuels/fetchtree/pkg/observability"
)

// WithHooks reports hits, misses and writes on c to the registered
// [observability.CacheHooks]. Hooks are looked up per call, so registering
// them after the cache is opened still works.
func WithHooks(c Cache) Cache {
	if _, ok := c.(hookedCache); ok {
		return c
	}
	return hookedCache{c}
}

type hookedCache struct {
	Cache
}

func (h hookedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := h.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, ok, err
}

func (h hookedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := h.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	return nil
}

// Unwrap returns the wrapped backend.
func (h hookedCache) Unwrap() Cache {
	return h.Cache
}
