package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bvcollective/sheetbridge/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ProjectStore struct {
	db   *bun.DB
	repo repository.Repository[*projectRecord]
}

func NewProjectStore(db *bun.DB) (*ProjectStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*projectRecord](db, projectHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid project repository wiring: %w", err)
		}
	}
	return &ProjectStore{db: db, repo: repo}, nil
}

func (s *ProjectStore) GetByKey(ctx context.Context, key string) (core.Project, bool, error) {
	if s == nil || s.db == nil {
		return core.Project{}, false, fmt.Errorf("sqlstore: project store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return core.Project{}, false, fmt.Errorf("sqlstore: project key is required")
	}
	record := &projectRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.project_key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Project{}, false, nil
		}
		return core.Project{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *ProjectStore) Save(ctx context.Context, project core.Project) (core.Project, error) {
	if s == nil || s.repo == nil {
		return core.Project{}, fmt.Errorf("sqlstore: project store is not configured")
	}
	if strings.TrimSpace(project.Key) == "" {
		return core.Project{}, fmt.Errorf("sqlstore: project key is required")
	}
	now := time.Now().UTC()

	existing := &projectRecord{}
	err := s.db.NewSelect().
		Model(existing).
		Where("?TableAlias.project_key = ?", strings.TrimSpace(project.Key)).
		Limit(1).
		Scan(ctx)
	if err != nil && err != sql.ErrNoRows {
		return core.Project{}, err
	}

	if err == sql.ErrNoRows {
		record := &projectRecord{ID: uuid.NewString(), CreatedAt: now}
		record.applyDomain(project, now)
		created, createErr := s.repo.Create(ctx, record)
		if createErr != nil {
			return core.Project{}, createErr
		}
		return created.toDomain(), nil
	}

	existing.applyDomain(project, now)
	updated, err := s.repo.Update(ctx, existing, repository.UpdateByID(existing.ID))
	if err != nil {
		return core.Project{}, err
	}
	return updated.toDomain(), nil
}
