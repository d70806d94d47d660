package core

import (
	"strings"
	"time"
)

// ActionKind tags the routing decision for one webhook delivery.
type ActionKind string

const (
	// ActionNone acknowledges the delivery without further work.
	ActionNone ActionKind = "none"
	// ActionChallenge echoes the subscription challenge back to the sender.
	ActionChallenge ActionKind = "challenge"
	// ActionEarlyStage fires for new rows created directly on an
	// early-stage status value.
	ActionEarlyStage ActionKind = "early_stage"
	// ActionDealWon fires for row updates that land the status column on
	// the deal-won value.
	ActionDealWon ActionKind = "deal_won"
)

// RoutedAction is the outcome of the listener pipeline for a single
// delivery. Exactly one of Challenge or Project carries data depending
// on Kind.
type RoutedAction struct {
	Kind      ActionKind
	Challenge string
	Project   ProjectInfo
	Reason    string
}

// ProjectInfo is the normalized view of the row that triggered an
// action. Cells maps column IDs (decimal strings) to display text.
type ProjectInfo struct {
	ProjectID   string
	ProjectType string
	ProjectName string
	RowID       int64
	SheetID     int64
	ModifiedAt  string
	Cells       map[string]string
}

// Cell returns the display text captured for a column ID, or "".
func (p ProjectInfo) Cell(columnID string) string {
	if len(p.Cells) == 0 {
		return ""
	}
	return strings.TrimSpace(p.Cells[strings.TrimSpace(columnID)])
}

// InboundRequest is one webhook delivery as received at the boundary.
type InboundRequest struct {
	Body       []byte
	Headers    map[string]string
	ReceivedAt time.Time
}

// Header returns a header value by case-insensitive name.
func (r InboundRequest) Header(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for key, value := range r.Headers {
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// InboundResult is what the service reports back to the HTTP boundary
// after processing one delivery.
type InboundResult struct {
	Action    ActionKind
	Challenge string
	Reason    string
	Outcome   *ActionOutcome
}

// ActionOutcome summarizes the downstream work performed for an
// actionable delivery.
type ActionOutcome struct {
	ProjectID   string
	ProjectType string
	ProjectName string
	RowID       int64
	Folders     CopySummary
	Notebook    SectionResult
	RowUpdated  bool
}

// Project is the stored metadata record for one opportunity, keyed by
// the project identifier carried in the sheet.
type Project struct {
	Key            string
	CompanyName    string
	ProjectName    string
	ProjectType    string
	SiteID         string
	DriveID        string
	JobFolderID    string
	ParentFolderID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Template is one stored template-folder mapping. Category groups
// templates by project type; Name becomes the copied folder prefix.
type Template struct {
	Category         string
	Name             string
	TemplateFolderID string
	DriveID          string
	SiteID           string
}

// ProvisionRequest asks the template provisioner to copy every
// template registered for Category into the destination folder.
type ProvisionRequest struct {
	DriveID      string
	FolderID     string
	Category     string
	ProjectName  string
	SkipExisting bool
}

// CopySummary aggregates the per-template results of one provisioning
// run.
type CopySummary struct {
	Total   int
	Copied  int
	Skipped int
	Failed  int
	Details []CopyDetail
}

// CopyDetail records the outcome for a single template folder.
type CopyDetail struct {
	Template   string
	FolderName string
	Skipped    bool
	Err        string
}

// PublishRequest asks the notebook publisher to ensure a notebook and
// section exist for a project and to write its metadata page.
type PublishRequest struct {
	SiteID         string
	ParentFolderID string
	NotebookName   string
	SectionName    string
	Fields         map[string]string
}

// SectionResult describes the notebook artifacts after publishing.
type SectionResult struct {
	NotebookID     string
	NotebookName   string
	NotebookURL    string
	SectionID      string
	SectionName    string
	SectionURL     string
	PageID         string
	SectionCreated bool
}

// DedupRecord is one persisted delivery signature.
type DedupRecord struct {
	Signature string
	CreatedAt time.Time
}

// HealthReport is the aggregate of per-dependency health checks.
type HealthReport struct {
	Status    string
	Checks    map[string]string
	CheckedAt time.Time
}

func copyStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return copied
}

func copyAnyMap(values map[string]any) map[string]any {
	if len(values) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return copied
}
