package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/bvcollective/sheetbridge/core"
)

type stubProjectReader struct {
	project core.Project
	err     error
	lastKey string
}

func (s *stubProjectReader) GetProject(ctx context.Context, key string) (core.Project, error) {
	s.lastKey = key
	return s.project, s.err
}

type stubTemplateReader struct {
	templates []core.Template
	err       error
}

func (s *stubTemplateReader) ListTemplates(ctx context.Context, category string) ([]core.Template, error) {
	return s.templates, s.err
}

type stubHealthReader struct {
	report core.HealthReport
}

func (s *stubHealthReader) Health(ctx context.Context) core.HealthReport {
	return s.report
}

func TestGetProjectQuery_Delegates(t *testing.T) {
	reader := &stubProjectReader{project: core.Project{Key: "OPP1", CompanyName: "Acme Co"}}
	q := NewGetProjectQuery(reader)

	project, err := q.Query(context.Background(), GetProjectMessage{Key: "OPP1"})
	if err != nil {
		t.Fatalf("query project: %v", err)
	}
	if project.CompanyName != "Acme Co" || reader.lastKey != "OPP1" {
		t.Fatalf("unexpected project %+v key %q", project, reader.lastKey)
	}
}

func TestGetProjectQuery_PropagatesError(t *testing.T) {
	reader := &stubProjectReader{err: fmt.Errorf("core: no project metadata for key")}
	q := NewGetProjectQuery(reader)
	if _, err := q.Query(context.Background(), GetProjectMessage{Key: "missing"}); err == nil {
		t.Fatalf("expected reader error propagated")
	}
}

func TestListTemplatesQuery_Delegates(t *testing.T) {
	reader := &stubTemplateReader{templates: []core.Template{{Category: "CategoryX", Name: "Drawings"}}}
	q := NewListTemplatesQuery(reader)

	templates, err := q.Query(context.Background(), ListTemplatesMessage{Category: "CategoryX"})
	if err != nil {
		t.Fatalf("query templates: %v", err)
	}
	if len(templates) != 1 || templates[0].Name != "Drawings" {
		t.Fatalf("unexpected templates %+v", templates)
	}
}

func TestHealthQuery_Delegates(t *testing.T) {
	reader := &stubHealthReader{report: core.HealthReport{Status: "ok"}}
	q := NewHealthQuery(reader)

	report, err := q.Query(context.Background(), HealthMessage{})
	if err != nil {
		t.Fatalf("query health: %v", err)
	}
	if report.Status != "ok" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestQueries_RequireReader(t *testing.T) {
	if _, err := NewGetProjectQuery(nil).Query(context.Background(), GetProjectMessage{Key: "OPP1"}); err == nil {
		t.Fatalf("expected dependency error for project query")
	}
	if _, err := NewListTemplatesQuery(nil).Query(context.Background(), ListTemplatesMessage{Category: "x"}); err == nil {
		t.Fatalf("expected dependency error for template query")
	}
	if _, err := NewHealthQuery(nil).Query(context.Background(), HealthMessage{}); err == nil {
		t.Fatalf("expected dependency error for health query")
	}
}

func TestQueryMessageValidation(t *testing.T) {
	if err := (GetProjectMessage{}).Validate(); err == nil {
		t.Fatalf("expected blank key rejected")
	}
	if err := (ListTemplatesMessage{}).Validate(); err == nil {
		t.Fatalf("expected blank category rejected")
	}
	if err := (HealthMessage{}).Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
