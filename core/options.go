package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig     Config
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

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithWebhookPipeline(pipeline WebhookPipeline) Option {
	return func(b *serviceBuilder) {
		b.pipeline = pipeline
	}
}

func WithDedupStore(store DedupStore) Option {
	return func(b *serviceBuilder) {
		b.dedupStore = store
	}
}

func WithProjectStore(store ProjectStore) Option {
	return func(b *serviceBuilder) {
		b.projectStore = store
	}
}

func WithTemplateStore(store TemplateStore) Option {
	return func(b *serviceBuilder) {
		b.templateStore = store
	}
}

func WithTemplateProvisioner(provisioner TemplateProvisioner) Option {
	return func(b *serviceBuilder) {
		b.provisioner = provisioner
	}
}

func WithNotebookPublisher(publisher NotebookPublisher) Option {
	return func(b *serviceBuilder) {
		b.publisher = publisher
	}
}

func WithRowAnnotator(annotator RowAnnotator) Option {
	return func(b *serviceBuilder) {
		b.annotator = annotator
	}
}

func WithJobEnqueuer(enqueuer JobEnqueuer) Option {
	return func(b *serviceBuilder) {
		b.jobEnqueuer = enqueuer
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("sheetbridge", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return bridgeErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	listener := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Listener.SharedSecret) != "" {
		listener["shared_secret"] = cfg.Listener.SharedSecret
	}
	if includeZero || strings.TrimSpace(cfg.Listener.SignatureHeader) != "" {
		listener["signature_header"] = cfg.Listener.SignatureHeader
	}
	if includeZero || strings.TrimSpace(cfg.Listener.StatusColumnID) != "" {
		listener["status_column_id"] = cfg.Listener.StatusColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Listener.ProjectColumnID) != "" {
		listener["project_column_id"] = cfg.Listener.ProjectColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Listener.CategoryColumnID) != "" {
		listener["category_column_id"] = cfg.Listener.CategoryColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Listener.ProjectNameColumnID) != "" {
		listener["project_name_column_id"] = cfg.Listener.ProjectNameColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Listener.CompanyColumnID) != "" {
		listener["company_column_id"] = cfg.Listener.CompanyColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Listener.DealWonValue) != "" {
		listener["deal_won_value"] = cfg.Listener.DealWonValue
	}
	if includeZero || len(cfg.Listener.EarlyStageValues) > 0 {
		listener["early_stage_values"] = append([]string(nil), cfg.Listener.EarlyStageValues...)
	}
	if len(listener) > 0 {
		layer["listener"] = listener
	}

	smartsheet := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Smartsheet.APIBase) != "" {
		smartsheet["api_base"] = cfg.Smartsheet.APIBase
	}
	if includeZero || strings.TrimSpace(cfg.Smartsheet.Token) != "" {
		smartsheet["token"] = cfg.Smartsheet.Token
	}
	if includeZero || cfg.Smartsheet.TimeoutSeconds > 0 {
		smartsheet["timeout_seconds"] = cfg.Smartsheet.TimeoutSeconds
	}
	if includeZero || cfg.Smartsheet.NotebookLinkColumnID > 0 {
		smartsheet["notebook_link_column_id"] = cfg.Smartsheet.NotebookLinkColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Smartsheet.DescriptionColumnID) != "" {
		smartsheet["description_column_id"] = cfg.Smartsheet.DescriptionColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Smartsheet.SiteAddressColumnID) != "" {
		smartsheet["site_address_column_id"] = cfg.Smartsheet.SiteAddressColumnID
	}
	if includeZero || strings.TrimSpace(cfg.Smartsheet.CustomerContactColumnID) != "" {
		smartsheet["customer_contact_column_id"] = cfg.Smartsheet.CustomerContactColumnID
	}
	if len(smartsheet) > 0 {
		layer["smartsheet"] = smartsheet
	}

	graph := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Graph.APIBase) != "" {
		graph["api_base"] = cfg.Graph.APIBase
	}
	if includeZero || strings.TrimSpace(cfg.Graph.TenantID) != "" {
		graph["tenant_id"] = cfg.Graph.TenantID
	}
	if includeZero || strings.TrimSpace(cfg.Graph.ClientID) != "" {
		graph["client_id"] = cfg.Graph.ClientID
	}
	if includeZero || strings.TrimSpace(cfg.Graph.ClientSecret) != "" {
		graph["client_secret"] = cfg.Graph.ClientSecret
	}
	if includeZero || strings.TrimSpace(cfg.Graph.DelegatedClientID) != "" {
		graph["delegated_client_id"] = cfg.Graph.DelegatedClientID
	}
	if includeZero || strings.TrimSpace(cfg.Graph.DelegatedRefreshToken) != "" {
		graph["delegated_refresh_token"] = cfg.Graph.DelegatedRefreshToken
	}
	if includeZero || strings.TrimSpace(cfg.Graph.Scope) != "" {
		graph["scope"] = cfg.Graph.Scope
	}
	if includeZero || strings.TrimSpace(cfg.Graph.SharePointHostname) != "" {
		graph["sharepoint_hostname"] = cfg.Graph.SharePointHostname
	}
	if includeZero || cfg.Graph.TimeoutSeconds > 0 {
		graph["timeout_seconds"] = cfg.Graph.TimeoutSeconds
	}
	if includeZero || cfg.Graph.CopyTimeoutSeconds > 0 {
		graph["copy_timeout_seconds"] = cfg.Graph.CopyTimeoutSeconds
	}
	if includeZero || cfg.Graph.CopyPollSeconds > 0 {
		graph["copy_poll_seconds"] = cfg.Graph.CopyPollSeconds
	}
	if len(graph) > 0 {
		layer["graph"] = graph
	}

	dedup := map[string]any{}
	if includeZero || cfg.Dedup.PersistedTTLSeconds > 0 {
		dedup["persisted_ttl_seconds"] = cfg.Dedup.PersistedTTLSeconds
	}
	if includeZero || cfg.Dedup.MemoryTTLSeconds > 0 {
		dedup["memory_ttl_seconds"] = cfg.Dedup.MemoryTTLSeconds
	}
	if includeZero || cfg.Dedup.MaxMemoryEntries > 0 {
		dedup["max_memory_entries"] = cfg.Dedup.MaxMemoryEntries
	}
	if len(dedup) > 0 {
		layer["dedup"] = dedup
	}

	return layer
}
