package dedup

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/bvcollective/sheetbridge/core"
)

const (
	defaultPersistedTTL = 30 * time.Minute
	defaultMemoryTTL    = 5 * time.Minute
)

// LayeredStore checks the persisted layer first and the memory cache
// second; a hit in either declares a duplicate. Store failures are
// fail-open: a delivery that cannot be checked is treated as new,
// because dropping real events over infrastructure trouble is the
// worse outcome. That asymmetry with the fail-closed signature check
// is intentional.
type LayeredStore struct {
	persisted    core.DedupRecordStore
	memory       *core.MemoryDedupCache
	persistedTTL time.Duration
	memoryTTL    time.Duration
	logger       glog.Logger

	// Now is injectable for tests.
	Now func() time.Time
}

type Config struct {
	Persisted    core.DedupRecordStore
	Memory       *core.MemoryDedupCache
	PersistedTTL time.Duration
	MemoryTTL    time.Duration
	MaxEntries   int
	Logger       glog.Logger
}

func NewLayeredStore(cfg Config) *LayeredStore {
	persistedTTL := cfg.PersistedTTL
	if persistedTTL <= 0 {
		persistedTTL = defaultPersistedTTL
	}
	memoryTTL := cfg.MemoryTTL
	if memoryTTL <= 0 {
		memoryTTL = defaultMemoryTTL
	}
	memory := cfg.Memory
	if memory == nil {
		memory = core.NewMemoryDedupCache(memoryTTL, cfg.MaxEntries)
	}
	return &LayeredStore{
		persisted:    cfg.Persisted,
		memory:       memory,
		persistedTTL: persistedTTL,
		memoryTTL:    memoryTTL,
		logger:       glog.Ensure(cfg.Logger),
		Now:          time.Now,
	}
}

// IsProcessed reports whether signature was already seen within its
// TTL window. Infrastructure errors log and return false.
func (s *LayeredStore) IsProcessed(ctx context.Context, signature string) bool {
	signature = strings.TrimSpace(signature)
	if s == nil || signature == "" {
		return false
	}

	if s.persisted != nil {
		record, found, err := s.persisted.Get(ctx, signature)
		if err != nil {
			s.logger.Error("persisted dedup lookup failed, failing open",
				"signature", signature, "error", err.Error())
		} else if found && s.now().Sub(record.CreatedAt) < s.persistedTTL {
			return true
		}
	}

	return s.memory.Seen(signature)
}

// MarkProcessed records signature in both layers. Best-effort: a
// failed persisted write logs and the memory layer still covers the
// current process lifetime.
func (s *LayeredStore) MarkProcessed(ctx context.Context, signature string) {
	signature = strings.TrimSpace(signature)
	if s == nil || signature == "" {
		return
	}

	if s.persisted != nil {
		err := s.persisted.Insert(ctx, core.DedupRecord{
			Signature: signature,
			CreatedAt: s.now(),
		})
		if err != nil {
			s.logger.Error("persisted dedup write failed",
				"signature", signature, "error", err.Error())
		}
	}
	s.memory.Put(signature, s.memoryTTL)
}

// PurgeExpired trims expired entries from both layers and returns the
// total removed.
func (s *LayeredStore) PurgeExpired(ctx context.Context) (int, error) {
	if s == nil {
		return 0, nil
	}
	removed := s.memory.Sweep()
	if s.persisted == nil {
		return removed, nil
	}
	cutoff := s.now().Add(-s.persistedTTL)
	persisted, err := s.persisted.DeleteBefore(ctx, cutoff)
	if err != nil {
		return removed, err
	}
	return removed + int(persisted), nil
}

func (s *LayeredStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ core.DedupStore = (*LayeredStore)(nil)
