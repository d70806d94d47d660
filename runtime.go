package sheetbridge

import (
	"fmt"
	"time"

	"github.com/bvcollective/sheetbridge/adapters/gologger"
	"github.com/bvcollective/sheetbridge/core"
	"github.com/bvcollective/sheetbridge/dedup"
	"github.com/bvcollective/sheetbridge/folders"
	"github.com/bvcollective/sheetbridge/graph"
	"github.com/bvcollective/sheetbridge/listener"
	"github.com/bvcollective/sheetbridge/onenote"
	"github.com/bvcollective/sheetbridge/smartsheet"
	sqlstore "github.com/bvcollective/sheetbridge/store/sql"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

// RuntimeConfig carries everything needed to assemble a fully wired bridge.
type RuntimeConfig struct {
	Config      Config
	Persistence any
	Logger      core.Logger

	// ProjectCache enables read-through caching of project lookups when set.
	ProjectCache repositorycache.CacheService
}

// Runtime is a fully assembled bridge: pipeline, clients, stores, service,
// and the command/query facade, sharing one configuration.
type Runtime struct {
	Service    *Service
	Facade     *Facade
	Smartsheet *smartsheet.Client
	Graph      *graph.Client
	Folders    *folders.Manager
	OneNote    *onenote.Manager
	Dedup      *dedup.LayeredStore
	Stores     core.BridgeStores
}

// NewRuntime builds the full delivery path: Smartsheet and Graph clients,
// the folder and notebook managers, the layered dedup store, the listener
// pipeline, and the service that ties them together.
func NewRuntime(cfg RuntimeConfig, opts ...Option) (*Runtime, error) {
	_, logger := gologger.Resolve(cfg.Config.ServiceName, nil, cfg.Logger)

	factory := sqlstore.NewRepositoryFactory()
	stores, err := factory.BuildStores(cfg.Persistence)
	if err != nil {
		return nil, fmt.Errorf("sheetbridge: build stores: %w", err)
	}

	projectStore := stores.ProjectStore()
	if cfg.ProjectCache != nil {
		cached, cacheErr := sqlstore.NewCachedProjectStore(projectStore, cfg.ProjectCache)
		if cacheErr != nil {
			return nil, cacheErr
		}
		projectStore = cached
	}

	layered := dedup.NewLayeredStore(dedup.Config{
		Persisted:    stores.DedupRecordStore(),
		PersistedTTL: seconds(cfg.Config.Dedup.PersistedTTLSeconds),
		MemoryTTL:    seconds(cfg.Config.Dedup.MemoryTTLSeconds),
		MaxEntries:   cfg.Config.Dedup.MaxMemoryEntries,
		Logger:       logger,
	})

	sheets, err := smartsheet.New(smartsheet.Config{
		APIBase:              cfg.Config.Smartsheet.APIBase,
		Token:                cfg.Config.Smartsheet.Token,
		Timeout:              seconds(cfg.Config.Smartsheet.TimeoutSeconds),
		NotebookLinkColumnID: cfg.Config.Smartsheet.NotebookLinkColumnID,
		Logger:               logger,
	})
	if err != nil {
		return nil, err
	}

	graphClient, err := graph.New(graph.Config{
		APIBase:               cfg.Config.Graph.APIBase,
		TenantID:              cfg.Config.Graph.TenantID,
		ClientID:              cfg.Config.Graph.ClientID,
		ClientSecret:          cfg.Config.Graph.ClientSecret,
		DelegatedClientID:     cfg.Config.Graph.DelegatedClientID,
		DelegatedRefreshToken: cfg.Config.Graph.DelegatedRefreshToken,
		Scope:                 cfg.Config.Graph.Scope,
		Timeout:               seconds(cfg.Config.Graph.TimeoutSeconds),
		Logger:                logger,
	})
	if err != nil {
		return nil, err
	}

	folderManager, err := folders.New(folders.Config{
		Graph:        graphClient,
		Templates:    stores.TemplateStore(),
		Logger:       logger,
		CopyTimeout:  seconds(cfg.Config.Graph.CopyTimeoutSeconds),
		PollInterval: seconds(cfg.Config.Graph.CopyPollSeconds),
	})
	if err != nil {
		return nil, err
	}

	notebookManager, err := onenote.New(onenote.Config{
		Graph:    graphClient,
		Hostname: cfg.Config.Graph.SharePointHostname,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	processor := listener.NewProcessor(listener.ProcessorConfig{
		Listener: cfg.Config.Listener,
		Dedup:    layered,
		Fetcher:  sheets,
		Logger:   logger,
	})

	serviceOpts := append([]Option{
		WithLogger(logger),
		WithRepositoryFactory(factory),
		WithWebhookPipeline(processor),
		WithDedupStore(layered),
		WithProjectStore(projectStore),
		WithTemplateStore(stores.TemplateStore()),
		WithTemplateProvisioner(folderManager),
		WithNotebookPublisher(notebookManager),
		WithRowAnnotator(sheets),
	}, opts...)

	service, err := NewService(cfg.Config, serviceOpts...)
	if err != nil {
		return nil, err
	}

	facade, err := NewFacade(service)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Service:    service,
		Facade:     facade,
		Smartsheet: sheets,
		Graph:      graphClient,
		Folders:    folderManager,
		OneNote:    notebookManager,
		Dedup:      layered,
		Stores:     stores,
	}, nil
}

func seconds(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}
