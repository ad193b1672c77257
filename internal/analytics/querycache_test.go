package analytics

import (
	"testing"
	"time"

	"marketing_dashboard_backend/internal/tenants"
)

func TestQueryCacheKeysByTenantAndWindow(t *testing.T) {
	c := NewQueryCache(time.Minute)
	a := tenants.Key{Tenant: "acme", Window: "all"}
	b := tenants.Key{Tenant: "beta", Window: "all"}

	c.Put(a, c.Generation("acme"), Snapshot{Key: a})
	if _, ok := c.Get(b); ok {
		t.Fatal("a snapshot of one client must never be read under another")
	}
	if snap, ok := c.Get(a); !ok || snap.Key != a {
		t.Fatal("expected cached snapshot")
	}
}

func TestQueryCacheDropsPutsFromOlderGeneration(t *testing.T) {
	c := NewQueryCache(time.Minute)
	key := tenants.Key{Tenant: "acme", Window: "all"}

	generation := c.Generation("acme")
	c.Invalidate("acme")

	if c.Put(key, generation, Snapshot{Key: key}) {
		t.Fatal("a put started before invalidation must be dropped")
	}
	if _, ok := c.Get(key); ok {
		t.Fatal("expected no entry")
	}
}

func TestQueryCacheInvalidateRemovesOnlyTenant(t *testing.T) {
	c := NewQueryCache(time.Minute)
	a := tenants.Key{Tenant: "acme", Window: "2024-01-01_2024-01-31"}
	b := tenants.Key{Tenant: "beta", Window: "2024-01-01_2024-01-31"}
	c.Put(a, 0, Snapshot{Key: a})
	c.Put(b, 0, Snapshot{Key: b})

	c.Invalidate("acme")

	if _, ok := c.Get(a); ok {
		t.Fatal("expected acme entry to be gone")
	}
	if _, ok := c.Get(b); !ok {
		t.Fatal("expected beta entry to survive")
	}
}

func TestQueryCacheExpires(t *testing.T) {
	c := NewQueryCache(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	key := tenants.Key{Tenant: "acme", Window: "all"}
	c.Put(key, 0, Snapshot{Key: key})

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(key); ok {
		t.Fatal("expected entry to expire")
	}
}
