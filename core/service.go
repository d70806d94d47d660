package core

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	pipeline          WebhookPipeline
	dedupStore        DedupStore
	projectStore      ProjectStore
	templateStore     TemplateStore
	provisioner       TemplateProvisioner
	publisher         NotebookPublisher
	annotator         RowAnnotator
	jobEnqueuer       JobEnqueuer
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	Pipeline          WebhookPipeline
	DedupStore        DedupStore
	ProjectStore      ProjectStore
	TemplateStore     TemplateStore
	Provisioner       TemplateProvisioner
	Publisher         NotebookPublisher
	Annotator         RowAnnotator
	JobEnqueuer       JobEnqueuer
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("sheetbridge", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("sheetbridge"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	needsStores := builder.projectStore == nil || builder.templateStore == nil
	if needsStores && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			provider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if provider != nil {
				if builder.projectStore == nil {
					builder.projectStore = provider.ProjectStore()
				}
				if builder.templateStore == nil {
					builder.templateStore = provider.TemplateStore()
				}
			}
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		pipeline:          builder.pipeline,
		dedupStore:        builder.dedupStore,
		projectStore:      builder.projectStore,
		templateStore:     builder.templateStore,
		provisioner:       builder.provisioner,
		publisher:         builder.publisher,
		annotator:         builder.annotator,
		jobEnqueuer:       builder.jobEnqueuer,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		Pipeline:          s.pipeline,
		DedupStore:        s.dedupStore,
		ProjectStore:      s.projectStore,
		TemplateStore:     s.templateStore,
		Provisioner:       s.provisioner,
		Publisher:         s.publisher,
		Annotator:         s.annotator,
		JobEnqueuer:       s.jobEnqueuer,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

// Health probes every dependency that can report liveness. A failing
// probe degrades the report without short-circuiting the rest.
func (s *Service) Health(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:    "ok",
		Checks:    map[string]string{},
		CheckedAt: time.Now().UTC(),
	}
	if s == nil {
		report.Status = "degraded"
		return report
	}

	probes := map[string]any{
		"dedup_store":    s.dedupStore,
		"project_store":  s.projectStore,
		"template_store": s.templateStore,
		"provisioner":    s.provisioner,
		"publisher":      s.publisher,
	}
	for name, probe := range probes {
		if probe == nil {
			report.Checks[name] = "unconfigured"
			continue
		}
		pinger, ok := probe.(Pinger)
		if !ok {
			report.Checks[name] = "ok"
			continue
		}
		if err := pinger.Ping(ctx); err != nil {
			report.Checks[name] = err.Error()
			report.Status = "degraded"
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
