package sheetbridge

import "github.com/bvcollective/sheetbridge/core"

type Config = core.Config

type ListenerConfig = core.ListenerConfig
type SmartsheetConfig = core.SmartsheetConfig
type GraphConfig = core.GraphConfig
type DedupConfig = core.DedupConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type WebhookPipeline = core.WebhookPipeline
type DedupStore = core.DedupStore
type DedupRecordStore = core.DedupRecordStore
type ProjectStore = core.ProjectStore
type TemplateStore = core.TemplateStore
type TemplateProvisioner = core.TemplateProvisioner
type NotebookPublisher = core.NotebookPublisher
type RowAnnotator = core.RowAnnotator
type JobEnqueuer = core.JobEnqueuer
type MetricsRecorder = core.MetricsRecorder

type InboundRequest = core.InboundRequest
type InboundResult = core.InboundResult
type RoutedAction = core.RoutedAction
type ActionOutcome = core.ActionOutcome
type Project = core.Project
type Template = core.Template
type HealthReport = core.HealthReport

var (
	WithLogger              = core.WithLogger
	WithLoggerProvider      = core.WithLoggerProvider
	WithMetricsRecorder     = core.WithMetricsRecorder
	WithErrorFactory        = core.WithErrorFactory
	WithErrorMapper         = core.WithErrorMapper
	WithPersistenceClient   = core.WithPersistenceClient
	WithRepositoryFactory   = core.WithRepositoryFactory
	WithConfigProvider      = core.WithConfigProvider
	WithOptionsResolver     = core.WithOptionsResolver
	WithWebhookPipeline     = core.WithWebhookPipeline
	WithDedupStore          = core.WithDedupStore
	WithProjectStore        = core.WithProjectStore
	WithTemplateStore       = core.WithTemplateStore
	WithTemplateProvisioner = core.WithTemplateProvisioner
	WithNotebookPublisher   = core.WithNotebookPublisher
	WithRowAnnotator        = core.WithRowAnnotator
	WithJobEnqueuer         = core.WithJobEnqueuer
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
