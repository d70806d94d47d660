package listener

import (
	"testing"

	"github.com/bvcollective/sheetbridge/core"
	"github.com/bvcollective/sheetbridge/smartsheet"
)

func testRowEvent(eventType string, cells map[string]smartsheet.CellValue) *RowEvent {
	return &RowEvent{
		RowID:     9,
		SheetID:   1,
		EventType: eventType,
		Cells:     cells,
	}
}

func TestClassifier_StatusValuePrefersDisplayValue(t *testing.T) {
	classifier := NewClassifier(testListenerConfig())
	event := testRowEvent(eventTypeUpdated, map[string]smartsheet.CellValue{
		"593432251944836": smartsheet.StructuredCell("closed won raw", "Closed Won", nil),
	})
	if got := classifier.StatusValue(event); got != "Closed Won" {
		t.Fatalf("expected display value to win, got %q", got)
	}
}

func TestClassifier_DealWonIsCaseSensitive(t *testing.T) {
	classifier := NewClassifier(testListenerConfig())
	event := testRowEvent(eventTypeUpdated, map[string]smartsheet.CellValue{
		"593432251944836": smartsheet.Scalar("closed won"),
	})
	if classifier.IsDealWon(event) {
		t.Fatalf("trigger comparison must be case-sensitive")
	}
	event.Cells["593432251944836"] = smartsheet.Scalar("Closed Won")
	if !classifier.IsDealWon(event) {
		t.Fatalf("exact trigger value must match")
	}
}

func TestClassifier_ActionableChangeRequiresCorrelatedFields(t *testing.T) {
	classifier := NewClassifier(testListenerConfig())

	missing := testRowEvent(eventTypeUpdated, map[string]smartsheet.CellValue{
		"593432251944836": smartsheet.Scalar("Closed Won"),
	})
	if classifier.IsActionableChange(missing) {
		t.Fatalf("deal-won without project and category must not be actionable")
	}

	complete := testRowEvent(eventTypeUpdated, map[string]smartsheet.CellValue{
		"593432251944836":  smartsheet.Scalar("Closed Won"),
		"3408182019051396": smartsheet.Scalar("OPP1"),
		"5878702367002500": smartsheet.Scalar("Buildout"),
	})
	if !classifier.IsActionableChange(complete) {
		t.Fatalf("fully populated deal-won event must be actionable")
	}
}

func TestClassifier_ProjectInfoFlattensAllCells(t *testing.T) {
	classifier := NewClassifier(testListenerConfig())
	event := testRowEvent(eventTypeUpdated, map[string]smartsheet.CellValue{
		"593432251944836":  smartsheet.Scalar("Closed Won"),
		"3408182019051396": smartsheet.Scalar("OPP1"),
		"5878702367002500": smartsheet.Scalar("Buildout"),
		"3534360453271428": smartsheet.Scalar("North Plant"),
		"1475623376867204": smartsheet.Scalar("Acme Co"),
	})

	info := classifier.ProjectInfo(event)
	if info.ProjectID != "OPP1" || info.ProjectType != "Buildout" || info.ProjectName != "North Plant" {
		t.Fatalf("unexpected identifiers: %+v", info)
	}
	if info.Cells["1475623376867204"] != "Acme Co" {
		t.Fatalf("expected company cell preserved, got %q", info.Cells["1475623376867204"])
	}
	if info.RowID != 9 || info.SheetID != 1 {
		t.Fatalf("expected row metadata carried over")
	}
}

func TestRouter_CreatedRowChecksEarlyStageSet(t *testing.T) {
	classifier := NewClassifier(testListenerConfig())
	router := NewRouter(classifier, nil)

	early := testRowEvent(eventTypeCreated, map[string]smartsheet.CellValue{
		"593432251944836": smartsheet.Scalar("Qualification"),
	})
	if action := router.Route(early); action.Kind != core.ActionEarlyStage {
		t.Fatalf("expected early-stage route, got %q (reason %q)", action.Kind, action.Reason)
	}

	late := testRowEvent(eventTypeCreated, map[string]smartsheet.CellValue{
		"593432251944836": smartsheet.Scalar("Closed Won"),
	})
	if action := router.Route(late); action.Kind != core.ActionNone {
		t.Fatalf("created rows outside the early-stage set must not act, got %q", action.Kind)
	}
}

func TestRouter_NilEventRoutesToNone(t *testing.T) {
	router := NewRouter(NewClassifier(testListenerConfig()), nil)
	if action := router.Route(nil); action.Kind != core.ActionNone {
		t.Fatalf("expected none for nil event, got %q", action.Kind)
	}
}
