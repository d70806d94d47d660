package listener

import (
	"strings"

	"github.com/bvcollective/sheetbridge/core"
)

// Classifier decides whether a normalized row event represents a
// meaningful business change. Trigger values compare against the
// cell's display form, case-sensitive, since business rules are
// written against the human-readable enumerated strings.
type Classifier struct {
	statusColumnID   string
	projectColumnID  string
	categoryColumnID string
	nameColumnID     string
	dealWonValue     string
	earlyStageValues map[string]bool
}

func NewClassifier(cfg core.ListenerConfig) *Classifier {
	earlyStage := make(map[string]bool, len(cfg.EarlyStageValues))
	for _, value := range cfg.EarlyStageValues {
		if value = strings.TrimSpace(value); value != "" {
			earlyStage[value] = true
		}
	}
	return &Classifier{
		statusColumnID:   strings.TrimSpace(cfg.StatusColumnID),
		projectColumnID:  strings.TrimSpace(cfg.ProjectColumnID),
		categoryColumnID: strings.TrimSpace(cfg.CategoryColumnID),
		nameColumnID:     strings.TrimSpace(cfg.ProjectNameColumnID),
		dealWonValue:     strings.TrimSpace(cfg.DealWonValue),
		earlyStageValues: earlyStage,
	}
}

// StatusValue returns the display form of the status cell, or "".
func (c *Classifier) StatusValue(event *RowEvent) string {
	if c == nil || event == nil {
		return ""
	}
	cell, ok := event.Cells[c.statusColumnID]
	if !ok {
		return ""
	}
	return cell.Display()
}

// IsEarlyStage reports whether the status landed on an early-stage
// trigger value.
func (c *Classifier) IsEarlyStage(event *RowEvent) bool {
	if c == nil || len(c.earlyStageValues) == 0 {
		return false
	}
	return c.earlyStageValues[c.StatusValue(event)]
}

// IsDealWon reports whether the status equals the deal-won value.
func (c *Classifier) IsDealWon(event *RowEvent) bool {
	if c == nil || c.dealWonValue == "" {
		return false
	}
	return c.StatusValue(event) == c.dealWonValue
}

// IsActionableChange is the full update predicate: deal-won status
// plus both correlated fields present. Many row edits deliver
// webhooks; only ones that land the status on the trigger with the
// minimum context populated act.
func (c *Classifier) IsActionableChange(event *RowEvent) bool {
	if !c.IsDealWon(event) {
		return false
	}
	return c.cellDisplay(event, c.projectColumnID) != "" &&
		c.cellDisplay(event, c.categoryColumnID) != ""
}

// ProjectInfo flattens the event into the payload handed to the
// action layer: every cell by column ID plus the derived identifiers
// and row metadata.
func (c *Classifier) ProjectInfo(event *RowEvent) core.ProjectInfo {
	info := core.ProjectInfo{
		RowID:      event.RowID,
		SheetID:    event.SheetID,
		ModifiedAt: event.ModifiedAt,
		Cells:      make(map[string]string, len(event.Cells)),
	}
	for columnID, cell := range event.Cells {
		info.Cells[columnID] = cell.Display()
	}
	info.ProjectID = c.cellDisplay(event, c.projectColumnID)
	info.ProjectType = c.cellDisplay(event, c.categoryColumnID)
	info.ProjectName = c.cellDisplay(event, c.nameColumnID)
	return info
}

func (c *Classifier) cellDisplay(event *RowEvent, columnID string) string {
	if c == nil || event == nil || columnID == "" {
		return ""
	}
	cell, ok := event.Cells[columnID]
	if !ok {
		return ""
	}
	return cell.Display()
}
