package entitlement

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds resolved entitlement values keyed by workspace and entry code
// (e.g. "feature:AUDIT_LOG", "limit:MAX_PROJECTS"). Values are short-lived;
// Invalidate removes every entry for a workspace and must be immediately
// visible to subsequent reads.
type Cache interface {
	Get(ctx context.Context, workspaceID uuid.UUID, key string) (string, bool)
	Set(ctx context.Context, workspaceID uuid.UUID, key, value string)
	Invalidate(ctx context.Context, workspaceID uuid.UUID)
}

const cacheKeySeparator = "|"

// MemoryCache is the single-node default: an expirable LRU behind a mutex.
// The mutex makes the scan in Invalidate atomic with respect to Set, so a
// read after Invalidate returns can never observe a pre-invalidation value.
type MemoryCache struct {
	mu    sync.Mutex
	cache *lru.LRU[string, string]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 4096
	}
	return &MemoryCache{
		cache: lru.NewLRU[string, string](size, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, workspaceID uuid.UUID, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(workspaceID.String() + cacheKeySeparator + key)
}

func (c *MemoryCache) Set(_ context.Context, workspaceID uuid.UUID, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(workspaceID.String()+cacheKeySeparator+key, value)
}

func (c *MemoryCache) Invalidate(_ context.Context, workspaceID uuid.UUID) {
	prefix := workspaceID.String() + cacheKeySeparator

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.cache.Keys() {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			c.cache.Remove(k)
		}
	}
}
