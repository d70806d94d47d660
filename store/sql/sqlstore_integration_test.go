package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/bvcollective/sheetbridge/core"
	bridgemigrations "github.com/bvcollective/sheetbridge/migrations"
	sqlstore "github.com/bvcollective/sheetbridge/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "sheetbridge-tests"
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:sheetbridge-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = bridgemigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != bridgemigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, bridgemigrations.WithValidationTargets(bridgemigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"bridge_projects", "bridge_templates", "bridge_dedup_records"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master for %s: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestProjectStore_SaveAndGetByKeyUpsert(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.ProjectStore()

	saved, err := store.Save(ctx, core.Project{
		Key:            "OPP1",
		CompanyName:    "Acme Co",
		ProjectName:    "North Plant",
		ProjectType:    "CategoryX",
		SiteID:         "site-1",
		DriveID:        "drive-1",
		JobFolderID:    "folder-1",
		ParentFolderID: "parent-1",
	})
	if err != nil {
		t.Fatalf("save project: %v", err)
	}
	if saved.Key != "OPP1" {
		t.Fatalf("unexpected saved project %+v", saved)
	}

	loaded, found, err := store.GetByKey(ctx, "OPP1")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if !found || loaded.CompanyName != "Acme Co" || loaded.JobFolderID != "folder-1" {
		t.Fatalf("unexpected loaded project found=%v %+v", found, loaded)
	}

	// A second save on the same key updates in place.
	updated, err := store.Save(ctx, core.Project{
		Key:         "OPP1",
		CompanyName: "Acme Holdings",
		ProjectName: "North Plant",
		ProjectType: "CategoryX",
		SiteID:      "site-1",
		DriveID:     "drive-1",
		JobFolderID: "folder-2",
	})
	if err != nil {
		t.Fatalf("upsert project: %v", err)
	}
	if updated.CompanyName != "Acme Holdings" {
		t.Fatalf("unexpected upserted project %+v", updated)
	}

	var count int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM bridge_projects WHERE project_key = ?", "OPP1",
	).Scan(ctx, &count); err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row per key, got %d", count)
	}

	if _, found, err := store.GetByKey(ctx, "missing"); err != nil || found {
		t.Fatalf("unknown keys must report not found without error, found=%v err=%v", found, err)
	}
}

func TestTemplateStore_ListByCategory(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.TemplateStore()

	for _, template := range []core.Template{
		{Category: "CategoryX", Name: "Drawings", TemplateFolderID: "tmpl-1", DriveID: "drive-t"},
		{Category: "CategoryX", Name: "Budget", TemplateFolderID: "tmpl-2", DriveID: "drive-t"},
		{Category: "CategoryY", Name: "Permits", TemplateFolderID: "tmpl-3", DriveID: "drive-t"},
	} {
		if _, err := store.Save(ctx, template); err != nil {
			t.Fatalf("save template %s: %v", template.Name, err)
		}
	}

	listed, err := store.ListByCategory(ctx, "CategoryX")
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(listed))
	}
	if listed[0].Name != "Budget" || listed[1].Name != "Drawings" {
		t.Fatalf("expected name ordering, got %+v", listed)
	}

	// Saving the same (category, name) pair replaces the folder mapping.
	if _, err := store.Save(ctx, core.Template{
		Category: "CategoryX", Name: "Budget", TemplateFolderID: "tmpl-2b",
	}); err != nil {
		t.Fatalf("upsert template: %v", err)
	}
	listed, err = store.ListByCategory(ctx, "CategoryX")
	if err != nil {
		t.Fatalf("list templates after upsert: %v", err)
	}
	if len(listed) != 2 || listed[0].TemplateFolderID != "tmpl-2b" {
		t.Fatalf("expected the mapping replaced in place, got %+v", listed)
	}
}

func TestDedupRecordStore_InsertGetAndPurge(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.DedupRecordStore()

	createdAt := time.Now().UTC().Add(-10 * time.Minute)
	if err := store.Insert(ctx, core.DedupRecord{Signature: "sig-1", CreatedAt: createdAt}); err != nil {
		t.Fatalf("insert record: %v", err)
	}
	// Duplicate inserts resolve silently; the first writer wins.
	if err := store.Insert(ctx, core.DedupRecord{Signature: "sig-1", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("duplicate insert must not error: %v", err)
	}

	record, found, err := store.Get(ctx, "sig-1")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !found || record.Signature != "sig-1" {
		t.Fatalf("unexpected record found=%v %+v", found, record)
	}

	if _, found, err := store.Get(ctx, "sig-unknown"); err != nil || found {
		t.Fatalf("unknown signatures must report not found without error, found=%v err=%v", found, err)
	}

	if err := store.Insert(ctx, core.DedupRecord{
		Signature: "sig-old",
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}); err != nil {
		t.Fatalf("insert old record: %v", err)
	}

	removed, err := store.DeleteBefore(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 expired record removed, got %d", removed)
	}
	if _, found, _ := store.Get(ctx, "sig-1"); !found {
		t.Fatalf("recent records must survive the purge")
	}
}

func TestNewService_WiresStoresFromRepositoryFactory(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	repoFactory := sqlstore.NewRepositoryFactory()
	svc, err := core.NewService(core.DefaultConfig(),
		core.WithPersistenceClient(client),
		core.WithRepositoryFactory(repoFactory),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deps := svc.Dependencies()
	if deps.PersistenceClient != client {
		t.Fatalf("expected persistence client override")
	}
	if deps.ProjectStore == nil {
		t.Fatalf("expected project store from repository factory build")
	}
	if deps.TemplateStore == nil {
		t.Fatalf("expected template store from repository factory build")
	}
}
