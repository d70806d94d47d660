package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bvcollective/sheetbridge/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const projectCacheKeyPrefix = "sheetbridge::project::v1"

// CachedProjectStore layers a read-through cache over project lookups.
// Webhook bursts for the same deal hit the same key repeatedly; saves
// invalidate so the next read reflects the write.
type CachedProjectStore struct {
	base  core.ProjectStore
	cache repositorycache.CacheService
}

func NewCachedProjectStore(base core.ProjectStore, cacheService repositorycache.CacheService) (*CachedProjectStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base project store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: project cache service is required")
	}
	return &CachedProjectStore{base: base, cache: cacheService}, nil
}

// ProjectCacheKey returns the deterministic cache key for a project lookup:
// sheetbridge::project::v1::<key> with the segment URL-path escaped.
func ProjectCacheKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("sqlstore: project key is required")
	}
	return strings.Join([]string{projectCacheKeyPrefix, url.PathEscape(key)}, "::"), nil
}

type cachedProjectEntry struct {
	Project core.Project
	Found   bool
}

func (s *CachedProjectStore) GetByKey(ctx context.Context, key string) (core.Project, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Project{}, false, fmt.Errorf("sqlstore: cached project store is not configured")
	}
	cacheKey, err := ProjectCacheKey(key)
	if err != nil {
		return core.Project{}, false, err
	}
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedProjectEntry, error) {
		project, found, fetchErr := s.base.GetByKey(ctx, key)
		if fetchErr != nil {
			return cachedProjectEntry{}, fetchErr
		}
		return cachedProjectEntry{Project: project, Found: found}, nil
	})
	if err != nil {
		return core.Project{}, false, err
	}
	return entry.Project, entry.Found, nil
}

func (s *CachedProjectStore) Save(ctx context.Context, project core.Project) (core.Project, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Project{}, fmt.Errorf("sqlstore: cached project store is not configured")
	}
	saved, err := s.base.Save(ctx, project)
	if err != nil {
		return core.Project{}, err
	}
	cacheKey, err := ProjectCacheKey(saved.Key)
	if err != nil {
		return core.Project{}, err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return core.Project{}, err
	}
	return saved, nil
}
