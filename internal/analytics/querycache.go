package analytics

import (
	"sync"
	"time"

	"marketing_dashboard_backend/internal/tenants"
)

// QueryCache holds dashboard snapshots keyed by (tenant, window signature).
// Every tenant has a generation counter; Invalidate bumps it, and a Put
// carrying an older generation is dropped so a fetch that started before an
// invalidation can never repopulate the cache.
type QueryCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	entries     map[tenants.Key]cacheEntry
	generations map[string]uint64
	now         func() time.Time
}

type cacheEntry struct {
	snapshot  Snapshot
	expiresAt time.Time
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:         ttl,
		entries:     make(map[tenants.Key]cacheEntry),
		generations: make(map[string]uint64),
		now:         time.Now,
	}
}

// Generation returns the tenant's current generation.
func (c *QueryCache) Generation(tenant string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[tenant]
}

func (c *QueryCache) Get(key tenants.Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return Snapshot{}, false
	}
	return entry.snapshot, true
}

// Put stores snap when generation is still current and reports whether it did.
func (c *QueryCache) Put(key tenants.Key, generation uint64, snap Snapshot) bool {
	if c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key.Tenant] != generation {
		return false
	}
	c.entries[key] = cacheEntry{snapshot: snap, expiresAt: c.now().Add(c.ttl)}
	return true
}

// Invalidate drops every entry of tenant and advances its generation.
func (c *QueryCache) Invalidate(tenant string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[tenant]++
	for key := range c.entries {
		if key.Tenant == tenant {
			delete(c.entries, key)
		}
	}
}

var _ tenants.Invalidator = (*QueryCache)(nil)
