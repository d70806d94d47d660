package listener

import (
	"context"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/bvcollective/sheetbridge/core"
)

// Processor is the end-to-end delivery pipeline: signature check,
// envelope parse, challenge short-circuit, duplicate gating, row
// normalization, and routing. One delivery is processed synchronously
// within the caller's request.
type Processor struct {
	secret          string
	signatureHeader string
	dedup           core.DedupStore
	normalizer      *Normalizer
	router          *Router
	logger          glog.Logger
}

type ProcessorConfig struct {
	Listener core.ListenerConfig
	Dedup    core.DedupStore
	Fetcher  RowFetcher
	Logger   glog.Logger
}

func NewProcessor(cfg ProcessorConfig) *Processor {
	logger := glog.Ensure(cfg.Logger)
	header := strings.TrimSpace(cfg.Listener.SignatureHeader)
	if header == "" {
		header = DefaultSignatureHeader
	}
	classifier := NewClassifier(cfg.Listener)
	return &Processor{
		secret:          strings.TrimSpace(cfg.Listener.SharedSecret),
		signatureHeader: header,
		dedup:           cfg.Dedup,
		normalizer:      NewNormalizer(cfg.Listener.StatusColumnID, cfg.Fetcher, logger),
		router:          NewRouter(classifier, logger),
		logger:          logger,
	}
}

// Process resolves one inbound delivery to a routing decision.
// Validation failures reject silently, parse failures error, and the
// row fetch only happens after the dedup gate passes.
func (p *Processor) Process(ctx context.Context, req core.InboundRequest) (core.RoutedAction, error) {
	if p == nil {
		return core.RoutedAction{Kind: core.ActionNone}, listenerInternal("listener: processor is not initialized", nil)
	}

	// Validation runs only when both header and secret are present.
	// The absent case is deliberately open; the mismatch case fails
	// closed without revealing which part of validation failed.
	signature := req.Header(p.signatureHeader)
	if signature != "" && p.secret != "" {
		if !ValidSignature(req.Body, signature, p.secret) {
			p.logger.Error("webhook signature validation failed")
			return core.RoutedAction{Kind: core.ActionNone, Reason: "signature rejected"}, nil
		}
	}

	envelope, err := ParseEnvelope(req.Body)
	if err != nil {
		return core.RoutedAction{Kind: core.ActionNone}, err
	}

	if envelope.IsChallenge() {
		challenge := envelope.Challenge
		p.logger.Info("responding to webhook challenge")
		return core.RoutedAction{Kind: core.ActionChallenge, Challenge: challenge}, nil
	}

	// Duplicate gating happens before the row fetch so redeliveries
	// never spend an upstream call.
	deliverySignature := envelope.Signature()
	if deliverySignature != "" && p.dedup != nil {
		if p.dedup.IsProcessed(ctx, deliverySignature) {
			p.logger.Info("dropping duplicate delivery", "signature", deliverySignature)
			return core.RoutedAction{Kind: core.ActionNone, Reason: "duplicate delivery"}, nil
		}
		p.dedup.MarkProcessed(ctx, deliverySignature)
	}

	event, err := p.normalizer.ExtractRowEvent(ctx, envelope)
	if err != nil {
		return core.RoutedAction{Kind: core.ActionNone}, err
	}
	if event == nil {
		return core.RoutedAction{Kind: core.ActionNone, Reason: "no actionable row event"}, nil
	}

	return p.router.Route(event), nil
}

var _ core.WebhookPipeline = (*Processor)(nil)
