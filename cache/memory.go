package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-memory cache implementation.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	policy  Policy
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	createdAt int64
}

// NewMemoryCache creates a new in-memory cache with the given policy.
func NewMemoryCache(policy Policy) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		policy:  policy,
		now:     time.Now,
	}
}

// Get sweeps expired entries, then retrieves a value. Returns (nil, false) on miss.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value. A policy with caching disabled makes Set a no-op.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	if !c.policy.ShouldCache() {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{
		value:     stored,
		createdAt: c.now().Unix(),
	}
	c.mu.Unlock()

	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Sweep deletes every expired entry.
func (c *MemoryCache) Sweep(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(), nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) sweepLocked() int64 {
	now := c.now()
	var removed int64
	for k, e := range c.entries {
		if c.policy.Expired(e.createdAt, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Ensure MemoryCache implements Cache
var (
	_ Cache   = (*MemoryCache)(nil)
	_ Sweeper = (*MemoryCache)(nil)
)
