package sqlstore

import (
	"fmt"

	"github.com/bvcollective/sheetbridge/core"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB

	projectStore     *ProjectStore
	templateStore    *TemplateStore
	dedupRecordStore *DedupRecordStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.BridgeStores, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.projectStore != nil && f.templateStore != nil && f.dedupRecordStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) ProjectStore() core.ProjectStore {
	if f == nil || f.projectStore == nil {
		return nil
	}
	return f.projectStore
}

func (f *RepositoryFactory) TemplateStore() core.TemplateStore {
	if f == nil || f.templateStore == nil {
		return nil
	}
	return f.templateStore
}

func (f *RepositoryFactory) DedupRecordStore() core.DedupRecordStore {
	if f == nil || f.dedupRecordStore == nil {
		return nil
	}
	return f.dedupRecordStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	projectStore, err := NewProjectStore(f.db)
	if err != nil {
		return err
	}
	f.projectStore = projectStore

	templateStore, err := NewTemplateStore(f.db)
	if err != nil {
		return err
	}
	f.templateStore = templateStore

	dedupRecordStore, err := NewDedupRecordStore(f.db)
	if err != nil {
		return err
	}
	f.dedupRecordStore = dedupRecordStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
