package listener

import (
	"context"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/bvcollective/sheetbridge/smartsheet"
)

// RowFetcher retrieves full row detail from the sheet API. Cell-level
// webhook events omit row content, so normalization needs a live
// fetch for the current envelope shape.
type RowFetcher interface {
	GetRow(ctx context.Context, sheetID, rowID int64) (smartsheet.Row, error)
}

// RowEvent is the canonical row-change representation the classifier
// and router operate on. It lives for one delivery and is never
// persisted.
type RowEvent struct {
	RowID      int64
	SheetID    int64
	EventType  string
	ModifiedAt string
	RowNumber  int64
	Cells      map[string]smartsheet.CellValue
}

// Normalizer converts parsed envelopes into RowEvents. Both wire
// shapes collapse into the same canonical form here so everything
// downstream stays shape-agnostic.
type Normalizer struct {
	statusColumnID string
	fetcher        RowFetcher
	logger         glog.Logger
}

func NewNormalizer(statusColumnID string, fetcher RowFetcher, logger glog.Logger) *Normalizer {
	return &Normalizer{
		statusColumnID: strings.TrimSpace(statusColumnID),
		fetcher:        fetcher,
		logger:         glog.Ensure(logger),
	}
}

// ExtractRowEvent resolves an envelope to at most one RowEvent. A nil
// event with nil error means the delivery carries nothing actionable:
// informational events, non-status cell edits, and failed enrichment
// fetches all land here rather than erroring.
func (n *Normalizer) ExtractRowEvent(ctx context.Context, envelope Envelope) (*RowEvent, error) {
	if n == nil {
		return nil, listenerInternal("listener: normalizer is not initialized", nil)
	}
	if envelope.IsChallenge() {
		return nil, nil
	}
	if envelope.IsCurrentShape() {
		return n.extractFromEvents(ctx, envelope)
	}
	return n.extractLegacy(envelope), nil
}

// extractFromEvents scans the events array for the first qualifying
// row or cell event. Later qualifying events in the same delivery are
// dropped, a known limitation carried over deliberately.
func (n *Normalizer) extractFromEvents(ctx context.Context, envelope Envelope) (*RowEvent, error) {
	event, ok := n.firstQualifyingEvent(envelope)
	if !ok {
		return nil, nil
	}

	rowID := event.RowID
	if rowID == 0 {
		rowID = event.ID
	}
	sheetID := envelope.ScopeObjectID
	if rowID == 0 || sheetID == 0 {
		n.logger.Info("qualifying event lacks row or sheet id, ignoring",
			"row_id", rowID, "sheet_id", sheetID)
		return nil, nil
	}

	if n.fetcher == nil {
		n.logger.Error("row fetcher unavailable, dropping event",
			"row_id", rowID, "sheet_id", sheetID)
		return nil, nil
	}
	row, err := n.fetcher.GetRow(ctx, sheetID, rowID)
	if err != nil {
		n.logger.Error("row detail fetch failed, dropping event",
			"row_id", rowID, "sheet_id", sheetID, "error", err.Error())
		return nil, nil
	}

	return &RowEvent{
		RowID:      row.ID,
		SheetID:    sheetID,
		EventType:  event.EventType,
		ModifiedAt: row.ModifiedAt,
		RowNumber:  row.RowNumber,
		Cells:      row.Cells,
	}, nil
}

func (n *Normalizer) firstQualifyingEvent(envelope Envelope) (EnvelopeEvent, bool) {
	for _, event := range envelope.Events {
		if event.EventType != eventTypeCreated && event.EventType != eventTypeUpdated {
			continue
		}
		switch event.ObjectType {
		case objectTypeRow:
			return event, true
		case objectTypeCell:
			// Cell events only qualify on the status column; edits to
			// any other column are noise.
			if n.statusColumnID != "" && event.ColumnID.String() == n.statusColumnID {
				return event, true
			}
		}
	}
	return EnvelopeEvent{}, false
}

// extractLegacy handles the single-event shape. Legacy payloads embed
// full cell values, so no fetch is needed.
func (n *Normalizer) extractLegacy(envelope Envelope) *RowEvent {
	var eventType string
	switch {
	case strings.EqualFold(envelope.EventType, legacyEventRowUpdated):
		eventType = eventTypeUpdated
	case strings.EqualFold(envelope.EventType, legacyEventRowCreated):
		eventType = eventTypeCreated
	default:
		n.logger.Info("ignoring non-row legacy event", "event_type", envelope.EventType)
		return nil
	}
	if envelope.Row == nil {
		n.logger.Info("legacy envelope carries no row data")
		return nil
	}

	cells := make(map[string]smartsheet.CellValue, len(envelope.Row.Cells))
	for _, cell := range envelope.Row.Cells {
		columnID := strings.TrimSpace(cell.ColumnID.String())
		if columnID == "" {
			continue
		}
		cells[columnID] = smartsheet.Scalar(cell.Value)
	}

	return &RowEvent{
		RowID:      envelope.Row.ID,
		SheetID:    envelope.ObjectID,
		EventType:  eventType,
		ModifiedAt: envelope.Row.ModifiedAt,
		RowNumber:  envelope.Row.RowNumber,
		Cells:      cells,
	}
}
