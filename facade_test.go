package sheetbridge

import (
	"context"
	"testing"

	bridgecommand "github.com/bvcollective/sheetbridge/command"
	"github.com/bvcollective/sheetbridge/core"
	bridgequery "github.com/bvcollective/sheetbridge/query"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.ProcessWebhook == nil || commands.PurgeDedup == nil {
		t.Fatalf("expected webhook command handlers to be wired")
	}
	if commands.RegisterTemplate == nil || commands.UpsertProject == nil {
		t.Fatalf("expected admin command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.GetProject == nil || queries.ListTemplates == nil || queries.Health == nil {
		t.Fatalf("expected query handlers to be wired")
	}
	if facade.Service() == nil {
		t.Fatalf("expected facade to expose the wrapped service")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	if err := facade.Commands().ProcessWebhook.Execute(context.Background(), bridgecommand.ProcessWebhookMessage{
		Request: core.InboundRequest{Body: []byte(`{"challenge":"abc"}`)},
	}); err != nil {
		t.Fatalf("execute process webhook command: %v", err)
	}
	if string(svc.lastWebhookBody) != `{"challenge":"abc"}` {
		t.Fatalf("unexpected webhook delegation payload: %s", svc.lastWebhookBody)
	}

	if err := facade.Commands().RegisterTemplate.Execute(context.Background(), bridgecommand.RegisterTemplateMessage{
		Template: core.Template{Category: "CategoryX", Name: "Drawings", TemplateFolderID: "tmpl-1"},
	}); err != nil {
		t.Fatalf("execute register template command: %v", err)
	}
	if svc.lastTemplate.Name != "Drawings" {
		t.Fatalf("unexpected template delegation payload: %#v", svc.lastTemplate)
	}

	project, err := facade.Queries().GetProject.Query(context.Background(), bridgequery.GetProjectMessage{Key: "OPP1"})
	if err != nil {
		t.Fatalf("query get project: %v", err)
	}
	if project.Key != "OPP1" {
		t.Fatalf("unexpected project query result: %#v", project)
	}

	report, err := facade.Queries().Health.Query(context.Background(), bridgequery.HealthMessage{})
	if err != nil {
		t.Fatalf("query health: %v", err)
	}
	if report.Status != "ok" {
		t.Fatalf("unexpected health query result: %#v", report)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

type stubFacadeService struct {
	lastWebhookBody []byte
	lastTemplate    core.Template
}

func (s *stubFacadeService) ProcessWebhook(_ context.Context, req core.InboundRequest) (core.InboundResult, error) {
	s.lastWebhookBody = req.Body
	return core.InboundResult{Action: core.ActionNone}, nil
}

func (s *stubFacadeService) PurgeDedup(context.Context) (int, error) {
	return 3, nil
}

func (s *stubFacadeService) RegisterTemplate(_ context.Context, template core.Template) (core.Template, error) {
	s.lastTemplate = template
	return template, nil
}

func (s *stubFacadeService) UpsertProject(_ context.Context, project core.Project) (core.Project, error) {
	return project, nil
}

func (s *stubFacadeService) GetProject(_ context.Context, key string) (core.Project, error) {
	return core.Project{Key: key}, nil
}

func (s *stubFacadeService) ListTemplates(context.Context, string) ([]core.Template, error) {
	return []core.Template{{Category: "CategoryX", Name: "Drawings"}}, nil
}

func (s *stubFacadeService) Health(context.Context) core.HealthReport {
	return core.HealthReport{Status: "ok"}
}
