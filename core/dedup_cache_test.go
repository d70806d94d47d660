package core

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryDedupCache_SeenExpiresWithTTL(t *testing.T) {
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	now := base
	cache := NewMemoryDedupCache(time.Minute, 16)
	cache.Now = func() time.Time { return now }

	cache.Put("sig-1", 0)
	if !cache.Seen("sig-1") {
		t.Fatalf("expected fresh entry to be seen")
	}

	now = base.Add(2 * time.Minute)
	if cache.Seen("sig-1") {
		t.Fatalf("expected entry to expire after the TTL")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected expired entry pruned on access, len=%d", cache.Len())
	}
}

func TestMemoryDedupCache_PutHonorsExplicitTTL(t *testing.T) {
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	now := base
	cache := NewMemoryDedupCache(time.Minute, 16)
	cache.Now = func() time.Time { return now }

	cache.Put("sig-long", time.Hour)
	now = base.Add(30 * time.Minute)
	if !cache.Seen("sig-long") {
		t.Fatalf("expected explicit TTL to outlive the default")
	}
}

func TestMemoryDedupCache_CapacityEvictsOldest(t *testing.T) {
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	now := base
	cache := NewMemoryDedupCache(time.Hour, 3)
	cache.Now = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		cache.Put(fmt.Sprintf("sig-%d", i), 0)
	}

	if cache.Len() != 3 {
		t.Fatalf("expected capacity cap of 3, len=%d", cache.Len())
	}
	if cache.Seen("sig-0") {
		t.Fatalf("expected the oldest entry to be evicted first")
	}
	if !cache.Seen("sig-3") {
		t.Fatalf("expected the newest entry to survive eviction")
	}
}

func TestMemoryDedupCache_SweepRemovesExpired(t *testing.T) {
	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	now := base
	cache := NewMemoryDedupCache(time.Minute, 16)
	cache.Now = func() time.Time { return now }

	cache.Put("stale-1", 0)
	cache.Put("stale-2", 0)
	cache.Put("fresh", time.Hour)

	now = base.Add(5 * time.Minute)
	if removed := cache.Sweep(); removed != 2 {
		t.Fatalf("expected 2 expired entries removed, got %d", removed)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 surviving entry, len=%d", cache.Len())
	}
}

func TestMemoryDedupCache_IgnoresBlankKeys(t *testing.T) {
	cache := NewMemoryDedupCache(time.Minute, 16)
	cache.Put("  ", 0)
	if cache.Len() != 0 {
		t.Fatalf("blank keys must not be recorded")
	}
	if cache.Seen("") {
		t.Fatalf("blank key lookup must report unseen")
	}

	var nilCache *MemoryDedupCache
	if nilCache.Seen("sig") {
		t.Fatalf("nil cache must report unseen")
	}
	nilCache.Put("sig", 0)
}
