package listener

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/bvcollective/sheetbridge/core"
)

const (
	legacyEventRowUpdated = "ROW_UPDATED"
	legacyEventRowCreated = "ROW_CREATED"
	legacyEventChallenge  = "WEBHOOK_CHALLENGE"

	eventTypeCreated = "created"
	eventTypeUpdated = "updated"

	objectTypeRow  = "row"
	objectTypeCell = "cell"
)

// EnvelopeEvent is one entry of a current-shape events array.
type EnvelopeEvent struct {
	ObjectType string      `json:"objectType"`
	EventType  string      `json:"eventType"`
	ID         int64       `json:"id"`
	RowID      int64       `json:"rowId"`
	ColumnID   json.Number `json:"columnId"`
	UserID     int64       `json:"userId"`
	Timestamp  string      `json:"timestamp"`
}

type legacyCell struct {
	ColumnID json.Number `json:"columnId"`
	Value    any         `json:"value"`
}

type legacyRow struct {
	ID         int64        `json:"id"`
	RowNumber  int64        `json:"rowNumber"`
	ModifiedAt string       `json:"modifiedAt"`
	Cells      []legacyCell `json:"cells"`
}

// Envelope is the parsed form of one webhook delivery body. Exactly
// one of the two wire shapes populates it: the presence of an events
// array marks the current shape, its absence marks the legacy
// single-event shape.
type Envelope struct {
	// Shared.
	Challenge string

	// Legacy shape.
	EventType string
	ObjectID  int64
	Row       *legacyRow

	// Current shape.
	WebhookID     int64
	Nonce         string
	Timestamp     string
	Scope         string
	ScopeObjectID int64
	Events        []EnvelopeEvent

	hasEvents bool
}

type wireEnvelope struct {
	Challenge     string            `json:"challenge"`
	EventType     string            `json:"eventType"`
	ObjectID      int64             `json:"objectId"`
	Row           *legacyRow        `json:"row"`
	WebhookID     int64             `json:"webhookId"`
	Nonce         string            `json:"nonce"`
	Timestamp     string            `json:"timestamp"`
	Scope         string            `json:"scope"`
	ScopeObjectID int64             `json:"scopeObjectId"`
	Events        []json.RawMessage `json:"events"`
}

// ParseEnvelope decodes a raw delivery body. Malformed JSON is a
// distinguishable bad-input error; a structurally valid payload that
// carries nothing useful still parses and resolves downstream to no
// action.
func ParseEnvelope(body []byte) (Envelope, error) {
	if len(body) == 0 {
		return Envelope{}, listenerBadInput("listener: empty webhook body", nil)
	}
	var wire wireEnvelope
	if err := json.Unmarshal(body, &wire); err != nil {
		return Envelope{}, listenerWrapError(
			err,
			goerrors.CategoryBadInput,
			"listener: malformed webhook body",
			http.StatusBadRequest,
			core.BridgeErrorBadInput,
			nil,
		)
	}

	envelope := Envelope{
		Challenge:     strings.TrimSpace(wire.Challenge),
		EventType:     strings.TrimSpace(wire.EventType),
		ObjectID:      wire.ObjectID,
		Row:           wire.Row,
		WebhookID:     wire.WebhookID,
		Nonce:         strings.TrimSpace(wire.Nonce),
		Timestamp:     strings.TrimSpace(wire.Timestamp),
		Scope:         strings.TrimSpace(wire.Scope),
		ScopeObjectID: wire.ScopeObjectID,
		hasEvents:     wire.Events != nil,
	}
	for _, raw := range wire.Events {
		var event EnvelopeEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}
		event.ObjectType = strings.ToLower(strings.TrimSpace(event.ObjectType))
		event.EventType = strings.ToLower(strings.TrimSpace(event.EventType))
		envelope.Events = append(envelope.Events, event)
	}
	return envelope, nil
}

// IsCurrentShape reports whether the delivery used the multi-event
// envelope format.
func (e Envelope) IsCurrentShape() bool {
	return e.hasEvents
}

// IsChallenge reports whether the delivery is a verification
// handshake. The legacy shape marks it with an event type, the current
// shape with a bare challenge token.
func (e Envelope) IsChallenge() bool {
	if strings.EqualFold(e.EventType, legacyEventChallenge) {
		return true
	}
	return e.Challenge != "" && !e.hasEvents && e.Row == nil
}

// Signature derives the dedup key for this delivery. Current-shape
// envelopes use the provider triple; legacy envelopes fall back to a
// deterministic key over object, row, and modification time so that
// redelivered legacy payloads still dedupe.
func (e Envelope) Signature() string {
	if e.hasEvents || e.Nonce != "" {
		return fmt.Sprintf("%d_%s_%s", e.WebhookID, e.Nonce, e.Timestamp)
	}
	if e.Row == nil {
		return ""
	}
	return fmt.Sprintf("legacy_%d_%d_%s", e.ObjectID, e.Row.ID, e.Row.ModifiedAt)
}
