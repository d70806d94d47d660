package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bvcollective/sheetbridge/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DedupRecordStore persists delivery signatures so duplicates survive
// restarts. Inserts race with concurrent deliveries; the unique constraint
// on signature keeps the first writer and the loser treats the conflict as
// success.
type DedupRecordStore struct {
	db *bun.DB
}

func NewDedupRecordStore(db *bun.DB) (*DedupRecordStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &DedupRecordStore{db: db}, nil
}

func (s *DedupRecordStore) Get(ctx context.Context, signature string) (core.DedupRecord, bool, error) {
	if s == nil || s.db == nil {
		return core.DedupRecord{}, false, fmt.Errorf("sqlstore: dedup record store is not configured")
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return core.DedupRecord{}, false, fmt.Errorf("sqlstore: signature is required")
	}
	record := &dedupRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.signature = ?", signature).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.DedupRecord{}, false, nil
		}
		return core.DedupRecord{}, false, err
	}
	return core.DedupRecord{Signature: record.Signature, CreatedAt: record.CreatedAt}, true, nil
}

func (s *DedupRecordStore) Insert(ctx context.Context, record core.DedupRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: dedup record store is not configured")
	}
	signature := strings.TrimSpace(record.Signature)
	if signature == "" {
		return fmt.Errorf("sqlstore: signature is required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := &dedupRecord{
		ID:        uuid.NewString(),
		Signature: signature,
		CreatedAt: createdAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *DedupRecordStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: dedup record store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*dedupRecord)(nil)).
		Where("created_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
