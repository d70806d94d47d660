package listener

import (
	"context"
	"fmt"
	"testing"

	"github.com/bvcollective/sheetbridge/core"
	"github.com/bvcollective/sheetbridge/smartsheet"
)

type stubDedupStore struct {
	seen      map[string]bool
	isCalls   int
	markCalls int
}

func newStubDedupStore() *stubDedupStore {
	return &stubDedupStore{seen: map[string]bool{}}
}

func (s *stubDedupStore) IsProcessed(_ context.Context, signature string) bool {
	s.isCalls++
	return s.seen[signature]
}

func (s *stubDedupStore) MarkProcessed(_ context.Context, signature string) {
	s.markCalls++
	s.seen[signature] = true
}

func (s *stubDedupStore) PurgeExpired(context.Context) (int, error) { return 0, nil }

type stubRowFetcher struct {
	row   smartsheet.Row
	err   error
	calls int
}

func (s *stubRowFetcher) GetRow(_ context.Context, sheetID, rowID int64) (smartsheet.Row, error) {
	s.calls++
	if s.err != nil {
		return smartsheet.Row{}, s.err
	}
	return s.row, nil
}

func testListenerConfig() core.ListenerConfig {
	return core.ListenerConfig{
		StatusColumnID:      "593432251944836",
		ProjectColumnID:     "3408182019051396",
		CategoryColumnID:    "5878702367002500",
		ProjectNameColumnID: "3534360453271428",
		CompanyColumnID:     "1475623376867204",
		DealWonValue:        "Closed Won",
		EarlyStageValues:    []string{"Prospecting", "Qualification", "Proposal"},
	}
}

func newTestProcessor(cfg core.ListenerConfig, dedup core.DedupStore, fetcher RowFetcher) *Processor {
	return NewProcessor(ProcessorConfig{
		Listener: cfg,
		Dedup:    dedup,
		Fetcher:  fetcher,
	})
}

func TestProcessor_LegacyClosedWonRoutesToDealWon(t *testing.T) {
	body := []byte(`{
		"eventType": "ROW_UPDATED",
		"objectId": 1,
		"row": {
			"id": 9,
			"modifiedAt": "2026-08-30T10:00:00Z",
			"cells": [
				{"columnId": "593432251944836", "value": "Closed Won"},
				{"columnId": "3408182019051396", "value": "OPP1"},
				{"columnId": "5878702367002500", "value": "CategoryX"}
			]
		}
	}`)

	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), nil)
	action, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process legacy closed-won delivery: %v", err)
	}
	if action.Kind != core.ActionDealWon {
		t.Fatalf("expected deal-won action, got %q (reason %q)", action.Kind, action.Reason)
	}
	if action.Project.ProjectID != "OPP1" {
		t.Fatalf("expected project id OPP1, got %q", action.Project.ProjectID)
	}
	if action.Project.ProjectType != "CategoryX" {
		t.Fatalf("expected project type CategoryX, got %q", action.Project.ProjectType)
	}
	if action.Project.RowID != 9 || action.Project.SheetID != 1 {
		t.Fatalf("unexpected row coordinates: row %d sheet %d", action.Project.RowID, action.Project.SheetID)
	}
}

func TestProcessor_LegacyNumericColumnIDsAccepted(t *testing.T) {
	body := []byte(`{
		"eventType": "ROW_UPDATED",
		"objectId": 1,
		"row": {
			"id": 9,
			"cells": [
				{"columnId": 593432251944836, "value": "Closed Won"},
				{"columnId": 3408182019051396, "value": "OPP1"},
				{"columnId": 5878702367002500, "value": "CategoryX"}
			]
		}
	}`)

	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), nil)
	action, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process delivery with numeric column ids: %v", err)
	}
	if action.Kind != core.ActionDealWon {
		t.Fatalf("expected deal-won action, got %q (reason %q)", action.Kind, action.Reason)
	}
}

func TestProcessor_LegacyEarlyStageStatusRoutesToNone(t *testing.T) {
	// Row updates act solely on the deal-won trigger; early-stage
	// status only matters on created rows.
	body := []byte(`{
		"eventType": "ROW_UPDATED",
		"objectId": 1,
		"row": {
			"id": 9,
			"cells": [
				{"columnId": "593432251944836", "value": "Prospecting"},
				{"columnId": "3408182019051396", "value": "OPP1"}
			]
		}
	}`)

	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), nil)
	action, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process early-stage legacy delivery: %v", err)
	}
	if action.Kind != core.ActionNone {
		t.Fatalf("expected no action, got %q", action.Kind)
	}
}

func TestProcessor_LegacyCreatedRowRoutesToEarlyStage(t *testing.T) {
	body := []byte(`{
		"eventType": "ROW_CREATED",
		"objectId": 1,
		"row": {
			"id": 9,
			"cells": [
				{"columnId": "593432251944836", "value": "Prospecting"},
				{"columnId": "3408182019051396", "value": "OPP1"}
			]
		}
	}`)

	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), nil)
	action, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process legacy created-row delivery: %v", err)
	}
	if action.Kind != core.ActionEarlyStage {
		t.Fatalf("expected early-stage action, got %q (reason %q)", action.Kind, action.Reason)
	}
	if action.Project.ProjectID != "OPP1" {
		t.Fatalf("expected project id OPP1, got %q", action.Project.ProjectID)
	}
}

func TestProcessor_ChallengeShortCircuitsBeforeDedup(t *testing.T) {
	dedup := newStubDedupStore()
	processor := newTestProcessor(testListenerConfig(), dedup, nil)

	action, err := processor.Process(context.Background(), core.InboundRequest{
		Body: []byte(`{"challenge": "abc123", "webhookId": 5}`),
	})
	if err != nil {
		t.Fatalf("process challenge: %v", err)
	}
	if action.Kind != core.ActionChallenge {
		t.Fatalf("expected challenge action, got %q", action.Kind)
	}
	if action.Challenge != "abc123" {
		t.Fatalf("expected challenge token echoed, got %q", action.Challenge)
	}
	if dedup.isCalls != 0 || dedup.markCalls != 0 {
		t.Fatalf("challenge must not touch the dedup store (is=%d mark=%d)", dedup.isCalls, dedup.markCalls)
	}
}

func TestProcessor_DuplicateDeliveryDropsSecondCopy(t *testing.T) {
	fetcher := &stubRowFetcher{row: smartsheet.Row{
		ID: 42,
		Cells: map[string]smartsheet.CellValue{
			"593432251944836": smartsheet.Scalar("Prospecting"),
		},
	}}
	dedup := newStubDedupStore()
	processor := newTestProcessor(testListenerConfig(), dedup, fetcher)

	body := []byte(`{
		"webhookId": 7,
		"nonce": "n-1",
		"timestamp": "2026-08-30T10:00:00Z",
		"scopeObjectId": 11,
		"events": [
			{"objectType": "row", "eventType": "created", "id": 42}
		]
	}`)

	first, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process first delivery: %v", err)
	}
	if first.Kind != core.ActionEarlyStage {
		t.Fatalf("expected early-stage action, got %q (reason %q)", first.Kind, first.Reason)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one row fetch, got %d", fetcher.calls)
	}

	second, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process duplicate delivery: %v", err)
	}
	if second.Kind != core.ActionNone || second.Reason != "duplicate delivery" {
		t.Fatalf("expected duplicate drop, got %q (reason %q)", second.Kind, second.Reason)
	}
	if fetcher.calls != 1 {
		t.Fatalf("duplicate delivery must not fetch the row again, got %d calls", fetcher.calls)
	}
}

func TestProcessor_NonStatusCellEventIsNoise(t *testing.T) {
	fetcher := &stubRowFetcher{}
	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), fetcher)

	body := []byte(`{
		"webhookId": 7,
		"nonce": "n-2",
		"timestamp": "2026-08-30T10:00:00Z",
		"scopeObjectId": 11,
		"events": [
			{"objectType": "cell", "eventType": "updated", "rowId": 42, "columnId": 1111}
		]
	}`)

	action, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process non-status cell event: %v", err)
	}
	if action.Kind != core.ActionNone {
		t.Fatalf("expected no action for non-status cell edit, got %q", action.Kind)
	}
	if fetcher.calls != 0 {
		t.Fatalf("noise events must not trigger a row fetch, got %d calls", fetcher.calls)
	}
}

func TestProcessor_StatusCellEventFetchesAndRoutes(t *testing.T) {
	fetcher := &stubRowFetcher{row: smartsheet.Row{
		ID:         42,
		ModifiedAt: "2026-08-30T10:05:00Z",
		Cells: map[string]smartsheet.CellValue{
			"593432251944836":  smartsheet.Scalar("Closed Won"),
			"3408182019051396": smartsheet.Scalar("OPP9"),
			"5878702367002500": smartsheet.Scalar("Buildout"),
			"3534360453271428": smartsheet.Scalar("North Plant"),
		},
	}}
	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), fetcher)

	body := []byte(`{
		"webhookId": 7,
		"nonce": "n-3",
		"timestamp": "2026-08-30T10:05:00Z",
		"scopeObjectId": 11,
		"events": [
			{"objectType": "cell", "eventType": "updated", "rowId": 42, "columnId": 593432251944836}
		]
	}`)

	action, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("process status cell event: %v", err)
	}
	if action.Kind != core.ActionDealWon {
		t.Fatalf("expected deal-won action, got %q (reason %q)", action.Kind, action.Reason)
	}
	if action.Project.ProjectName != "North Plant" {
		t.Fatalf("expected project name from fetched row, got %q", action.Project.ProjectName)
	}
}

func TestProcessor_FailedRowFetchResolvesToNoAction(t *testing.T) {
	fetcher := &stubRowFetcher{err: fmt.Errorf("upstream timeout")}
	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), fetcher)

	body := []byte(`{
		"webhookId": 7,
		"nonce": "n-4",
		"timestamp": "2026-08-30T10:06:00Z",
		"scopeObjectId": 11,
		"events": [
			{"objectType": "row", "eventType": "updated", "id": 42}
		]
	}`)

	action, err := processor.Process(context.Background(), core.InboundRequest{Body: body})
	if err != nil {
		t.Fatalf("fetch failures must degrade to no action, got error: %v", err)
	}
	if action.Kind != core.ActionNone {
		t.Fatalf("expected no action when enrichment fails, got %q", action.Kind)
	}
}

func TestProcessor_InvalidSignatureRejectsSilently(t *testing.T) {
	cfg := testListenerConfig()
	cfg.SharedSecret = "topsecret"
	dedup := newStubDedupStore()
	processor := newTestProcessor(cfg, dedup, nil)

	body := []byte(`{"eventType": "ROW_UPDATED", "objectId": 1, "row": {"id": 9, "cells": []}}`)
	action, err := processor.Process(context.Background(), core.InboundRequest{
		Body: body,
		Headers: map[string]string{
			"Smartsheet-Hook-Signature": "deadbeef",
		},
	})
	if err != nil {
		t.Fatalf("signature mismatch must not error: %v", err)
	}
	if action.Kind != core.ActionNone || action.Reason != "signature rejected" {
		t.Fatalf("expected silent rejection, got %q (reason %q)", action.Kind, action.Reason)
	}
	if dedup.isCalls != 0 {
		t.Fatalf("rejected delivery must not reach the dedup gate")
	}
}

func TestProcessor_ValidSignatureAccepted(t *testing.T) {
	cfg := testListenerConfig()
	cfg.SharedSecret = "topsecret"
	processor := newTestProcessor(cfg, newStubDedupStore(), nil)

	body := []byte(`{"challenge": "ok", "webhookId": 3}`)
	action, err := processor.Process(context.Background(), core.InboundRequest{
		Body: body,
		Headers: map[string]string{
			"Smartsheet-Hook-Signature": SignPayload(body, "topsecret"),
		},
	})
	if err != nil {
		t.Fatalf("process signed challenge: %v", err)
	}
	if action.Kind != core.ActionChallenge {
		t.Fatalf("expected challenge action, got %q", action.Kind)
	}
}

func TestProcessor_MissingSignatureHeaderStaysOpen(t *testing.T) {
	cfg := testListenerConfig()
	cfg.SharedSecret = "topsecret"
	processor := newTestProcessor(cfg, newStubDedupStore(), nil)

	action, err := processor.Process(context.Background(), core.InboundRequest{
		Body: []byte(`{"challenge": "open", "webhookId": 3}`),
	})
	if err != nil {
		t.Fatalf("process unsigned delivery: %v", err)
	}
	if action.Kind != core.ActionChallenge {
		t.Fatalf("expected unsigned delivery to pass through, got %q", action.Kind)
	}
}

func TestProcessor_MalformedBodyErrors(t *testing.T) {
	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), nil)
	_, err := processor.Process(context.Background(), core.InboundRequest{Body: []byte(`{not json`)})
	if err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestProcessor_EmptyEventsArrayResolvesToNone(t *testing.T) {
	processor := newTestProcessor(testListenerConfig(), newStubDedupStore(), nil)
	action, err := processor.Process(context.Background(), core.InboundRequest{
		Body: []byte(`{"webhookId": 7, "nonce": "n-5", "timestamp": "t", "events": []}`),
	})
	if err != nil {
		t.Fatalf("process empty events array: %v", err)
	}
	if action.Kind != core.ActionNone {
		t.Fatalf("expected no action, got %q", action.Kind)
	}
}
