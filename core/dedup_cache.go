package core

import (
	"strings"
	"sync"
	"time"
)

const (
	defaultCacheTTL        = 5 * time.Minute
	defaultCacheMaxEntries = 8192
)

type cacheEntry struct {
	expiresAt time.Time
}

// MemoryDedupCache is a bounded in-process TTL cache for delivery
// signatures. It backs the dedup store when the persisted layer is
// unavailable and absorbs the burst window within a single process
// lifetime.
type MemoryDedupCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]cacheEntry

	// Now is injectable for tests.
	Now func() time.Time
}

func NewMemoryDedupCache(ttl time.Duration, maxEntries int) *MemoryDedupCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultCacheMaxEntries
	}
	return &MemoryDedupCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    map[string]cacheEntry{},
		Now:        time.Now,
	}
}

// Seen reports whether key is present and unexpired. Expired entries
// are pruned on access.
func (c *MemoryDedupCache) Seen(key string) bool {
	key = strings.TrimSpace(key)
	if c == nil || key == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	if !entry.expiresAt.After(now) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Put records key with the supplied TTL, falling back to the cache
// default when ttl is not positive.
func (c *MemoryDedupCache) Put(key string, ttl time.Duration) {
	key = strings.TrimSpace(key)
	if c == nil || key == "" {
		return
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.pruneLocked(now)
	c.entries[key] = cacheEntry{expiresAt: now.Add(ttl)}
	c.enforceCapacityLocked()
}

// Sweep drops every expired entry and returns how many were removed.
func (c *MemoryDedupCache) Sweep() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked(c.now())
}

// Len reports the current entry count, expired entries included.
func (c *MemoryDedupCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryDedupCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *MemoryDedupCache) pruneLocked(now time.Time) int {
	removed := 0
	for key, entry := range c.entries {
		if !entry.expiresAt.After(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryDedupCache) enforceCapacityLocked() {
	for len(c.entries) > c.maxEntries {
		c.evictOldestLocked()
	}
}

func (c *MemoryDedupCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestExp time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.expiresAt.Before(oldestExp) {
			oldestKey = key
			oldestExp = entry.expiresAt
			found = true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
