package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger used across the bridge.
type Logger = glog.Logger

// LoggerProvider resolves named loggers.
type LoggerProvider = glog.LoggerProvider

// FieldsLogger attaches structured fields to a logger.
type FieldsLogger = glog.FieldsLogger

// WebhookPipeline turns one inbound delivery into a routing decision.
// Implementations own signature validation, dedup gating, payload
// normalization, and classification.
type WebhookPipeline interface {
	Process(ctx context.Context, req InboundRequest) (RoutedAction, error)
}

// DedupStore suppresses reprocessing of delivery signatures.
// IsProcessed treats store failures as "not a duplicate" so that
// infrastructure trouble never drops legitimate events; MarkProcessed
// is best-effort and never raises.
type DedupStore interface {
	IsProcessed(ctx context.Context, signature string) bool
	MarkProcessed(ctx context.Context, signature string)
	PurgeExpired(ctx context.Context) (int, error)
}

// DedupRecordStore is the persisted layer behind a DedupStore.
type DedupRecordStore interface {
	Get(ctx context.Context, signature string) (DedupRecord, bool, error)
	Insert(ctx context.Context, record DedupRecord) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProjectStore reads and writes project metadata records.
type ProjectStore interface {
	GetByKey(ctx context.Context, key string) (Project, bool, error)
	Save(ctx context.Context, project Project) (Project, error)
}

// TemplateStore reads and writes template-folder mappings.
type TemplateStore interface {
	ListByCategory(ctx context.Context, category string) ([]Template, error)
	Save(ctx context.Context, template Template) (Template, error)
}

// TemplateProvisioner copies template folders into a project folder.
type TemplateProvisioner interface {
	CopyForCategory(ctx context.Context, req ProvisionRequest) (CopySummary, error)
}

// NotebookPublisher ensures the notebook and section for a project and
// writes its metadata page.
type NotebookPublisher interface {
	PublishProjectSection(ctx context.Context, req PublishRequest) (SectionResult, error)
}

// RowAnnotator writes the published notebook link back to the sheet.
type RowAnnotator interface {
	WriteNotebookLink(ctx context.Context, sheetID, rowID int64, display, url string) error
}

// BridgeStores is the persistence surface a repository factory builds.
type BridgeStores interface {
	ProjectStore() ProjectStore
	TemplateStore() TemplateStore
	DedupRecordStore() DedupRecordStore
}

// RepositoryStoreFactory builds stores from a persistence client.
type RepositoryStoreFactory interface {
	BuildStores(client any) (BridgeStores, error)
}

// MetricsRecorder receives operational counters and timings.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// JobExecutionMessage is the transport-neutral shape of a background
// job run.
type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
	Attempt        int
	MaxRetries     int
}

// JobEnqueuer schedules background work such as dedup purges.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg JobExecutionMessage) error
}

// Pinger is implemented by dependencies that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
