package dedup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bvcollective/sheetbridge/core"
)

type stubRecordStore struct {
	records      map[string]core.DedupRecord
	getErr       error
	insertErr    error
	deleted      int64
	deleteErr    error
	deleteCutoff time.Time
	inserts      []core.DedupRecord
}

func (s *stubRecordStore) Get(ctx context.Context, signature string) (core.DedupRecord, bool, error) {
	if s.getErr != nil {
		return core.DedupRecord{}, false, s.getErr
	}
	record, ok := s.records[signature]
	return record, ok, nil
}

func (s *stubRecordStore) Insert(ctx context.Context, record core.DedupRecord) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if s.records == nil {
		s.records = map[string]core.DedupRecord{}
	}
	s.records[record.Signature] = record
	s.inserts = append(s.inserts, record)
	return nil
}

func (s *stubRecordStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.deleteCutoff = cutoff
	return s.deleted, s.deleteErr
}

func newTestStore(persisted core.DedupRecordStore, now time.Time) *LayeredStore {
	store := NewLayeredStore(Config{
		Persisted:    persisted,
		PersistedTTL: 30 * time.Minute,
		MemoryTTL:    5 * time.Minute,
		MaxEntries:   64,
	})
	store.Now = func() time.Time { return now }
	store.memory.Now = store.Now
	return store
}

func TestLayeredStore_PersistedHitWithinTTL(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	persisted := &stubRecordStore{records: map[string]core.DedupRecord{
		"sig-1": {Signature: "sig-1", CreatedAt: now.Add(-10 * time.Minute)},
		"sig-2": {Signature: "sig-2", CreatedAt: now.Add(-45 * time.Minute)},
	}}
	store := newTestStore(persisted, now)

	if !store.IsProcessed(context.Background(), "sig-1") {
		t.Fatalf("expected a persisted hit inside the TTL window")
	}
	if store.IsProcessed(context.Background(), "sig-2") {
		t.Fatalf("records past the TTL must not count as duplicates")
	}
}

func TestLayeredStore_PersistedErrorFailsOpen(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	persisted := &stubRecordStore{getErr: fmt.Errorf("database is locked")}
	store := newTestStore(persisted, now)

	if store.IsProcessed(context.Background(), "sig-1") {
		t.Fatalf("lookup failures must fail open")
	}
}

func TestLayeredStore_MemoryCoversFailedPersistedWrite(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	persisted := &stubRecordStore{
		getErr:    fmt.Errorf("database is locked"),
		insertErr: fmt.Errorf("database is locked"),
	}
	store := newTestStore(persisted, now)

	store.MarkProcessed(context.Background(), "sig-1")
	if !store.IsProcessed(context.Background(), "sig-1") {
		t.Fatalf("memory layer must cover the window when the persisted layer is down")
	}
}

func TestLayeredStore_MarkProcessedWritesBothLayers(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	persisted := &stubRecordStore{}
	store := newTestStore(persisted, now)

	store.MarkProcessed(context.Background(), "sig-1")
	if len(persisted.inserts) != 1 || persisted.inserts[0].Signature != "sig-1" {
		t.Fatalf("expected a persisted insert, got %+v", persisted.inserts)
	}
	if !persisted.inserts[0].CreatedAt.Equal(now) {
		t.Fatalf("expected the injected clock used, got %v", persisted.inserts[0].CreatedAt)
	}
	if !store.memory.Seen("sig-1") {
		t.Fatalf("expected the memory layer populated")
	}
}

func TestLayeredStore_BlankSignatureIgnored(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	persisted := &stubRecordStore{}
	store := newTestStore(persisted, now)

	store.MarkProcessed(context.Background(), "   ")
	if len(persisted.inserts) != 0 {
		t.Fatalf("blank signatures must not be recorded")
	}
	if store.IsProcessed(context.Background(), "") {
		t.Fatalf("blank signatures must not be duplicates")
	}
}

func TestLayeredStore_PurgeExpired(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	persisted := &stubRecordStore{deleted: 5}
	store := newTestStore(persisted, now)

	store.memory.Put("stale", time.Minute)
	store.Now = func() time.Time { return now.Add(10 * time.Minute) }
	store.memory.Now = store.Now

	removed, err := store.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if removed != 6 {
		t.Fatalf("expected 5 persisted + 1 memory removals, got %d", removed)
	}
	wantCutoff := now.Add(10 * time.Minute).Add(-30 * time.Minute)
	if !persisted.deleteCutoff.Equal(wantCutoff) {
		t.Fatalf("unexpected cutoff %v, want %v", persisted.deleteCutoff, wantCutoff)
	}
}

func TestLayeredStore_PurgeSurfacesPersistedError(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	persisted := &stubRecordStore{deleteErr: fmt.Errorf("database is locked")}
	store := newTestStore(persisted, now)

	if _, err := store.PurgeExpired(context.Background()); err == nil {
		t.Fatalf("expected the persisted delete error surfaced")
	}
}
