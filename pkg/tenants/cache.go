// pkg/tenants/cache.go
package tenants

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedDirectory wraps a Directory with a bounded-TTL host cache to keep
// per-request directory load off the hot path. Only successful host lookups
// are cached, so a newly mapped custom domain resolves on the next request
// and a changed one is stale for at most the TTL. Slug lookups are not on
// the per-request path and pass straight through.
type cachedDirectory struct {
	inner Directory
	ttl   time.Duration
	rdb   *redis.Client

	mu    sync.RWMutex
	local map[string]cachedTenant
}

type cachedTenant struct {
	t       Tenant
	expires time.Time
}

// NewCachedDirectory wraps inner with a host->tenant cache. When rdb is nil
// the cache is process-local.
func NewCachedDirectory(inner Directory, rdb *redis.Client, ttl time.Duration) Directory {
	return &cachedDirectory{inner: inner, ttl: ttl, rdb: rdb, local: map[string]cachedTenant{}}
}

func (c *cachedDirectory) FindBySlug(ctx context.Context, slug string) (Tenant, error) {
	return c.inner.FindBySlug(ctx, slug)
}

func (c *cachedDirectory) FindByHostCandidate(ctx context.Context, host string) (Tenant, error) {
	if t, ok := c.cached(ctx, host); ok {
		return t, nil
	}
	t, err := c.inner.FindByHostCandidate(ctx, host)
	if err != nil {
		return Tenant{}, err
	}
	c.store(ctx, host, t)
	return t, nil
}

const cacheKeyPrefix = "tenantdir:host:"

func (c *cachedDirectory) cached(ctx context.Context, host string) (Tenant, bool) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, cacheKeyPrefix+host).Bytes()
		if err != nil {
			return Tenant{}, false
		}
		var t Tenant
		if err := json.Unmarshal(raw, &t); err != nil {
			return Tenant{}, false
		}
		return t, true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.local[host]
	if !ok || time.Now().After(e.expires) {
		return Tenant{}, false
	}
	return e.t, true
}

func (c *cachedDirectory) store(ctx context.Context, host string, t Tenant) {
	if c.rdb != nil {
		if raw, err := json.Marshal(t); err == nil {
			_ = c.rdb.Set(ctx, cacheKeyPrefix+host, raw, c.ttl).Err()
		}
		return
	}
	c.mu.Lock()
	c.local[host] = cachedTenant{t: t, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
