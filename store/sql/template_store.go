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

type TemplateStore struct {
	db   *bun.DB
	repo repository.Repository[*templateRecord]
}

func NewTemplateStore(db *bun.DB) (*TemplateStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*templateRecord](db, templateHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid template repository wiring: %w", err)
		}
	}
	return &TemplateStore{db: db, repo: repo}, nil
}

func (s *TemplateStore) ListByCategory(ctx context.Context, category string) ([]core.Template, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: template store is not configured")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("sqlstore: template category is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("category", "=", category),
		repository.OrderBy("name ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Template, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *TemplateStore) Save(ctx context.Context, template core.Template) (core.Template, error) {
	if s == nil || s.repo == nil {
		return core.Template{}, fmt.Errorf("sqlstore: template store is not configured")
	}
	category := strings.TrimSpace(template.Category)
	name := strings.TrimSpace(template.Name)
	if category == "" || name == "" {
		return core.Template{}, fmt.Errorf("sqlstore: template category and name are required")
	}
	if strings.TrimSpace(template.TemplateFolderID) == "" {
		return core.Template{}, fmt.Errorf("sqlstore: template folder id is required")
	}
	now := time.Now().UTC()

	existing := &templateRecord{}
	err := s.db.NewSelect().
		Model(existing).
		Where("?TableAlias.category = ?", category).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil && err != sql.ErrNoRows {
		return core.Template{}, err
	}

	if err == sql.ErrNoRows {
		record := &templateRecord{
			ID:               uuid.NewString(),
			Category:         category,
			Name:             name,
			TemplateFolderID: strings.TrimSpace(template.TemplateFolderID),
			DriveID:          strings.TrimSpace(template.DriveID),
			SiteID:           strings.TrimSpace(template.SiteID),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		created, createErr := s.repo.Create(ctx, record)
		if createErr != nil {
			return core.Template{}, createErr
		}
		return created.toDomain(), nil
	}

	existing.TemplateFolderID = strings.TrimSpace(template.TemplateFolderID)
	existing.DriveID = strings.TrimSpace(template.DriveID)
	existing.SiteID = strings.TrimSpace(template.SiteID)
	existing.UpdatedAt = now
	updated, err := s.repo.Update(ctx, existing, repository.UpdateByID(existing.ID))
	if err != nil {
		return core.Template{}, err
	}
	return updated.toDomain(), nil
}
