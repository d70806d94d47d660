// Package sheetbridge turns Smartsheet webhook deliveries into SharePoint
// folder provisioning and OneNote documentation. The root package wires the
// listener pipeline, clients, and stores into a single service plus a
// command/query facade for host applications.
package sheetbridge

import (
	"fmt"

	bridgecommand "github.com/bvcollective/sheetbridge/command"
	"github.com/bvcollective/sheetbridge/core"
	bridgequery "github.com/bvcollective/sheetbridge/query"
)

// CommandQueryService is the full surface the facade dispatches against.
type CommandQueryService interface {
	bridgecommand.MutatingService
	bridgequery.ProjectReader
	bridgequery.TemplateReader
	bridgequery.HealthReader
}

type Commands struct {
	ProcessWebhook   *bridgecommand.ProcessWebhookCommand
	PurgeDedup       *bridgecommand.PurgeDedupCommand
	RegisterTemplate *bridgecommand.RegisterTemplateCommand
	UpsertProject    *bridgecommand.UpsertProjectCommand
}

type Queries struct {
	GetProject    *bridgequery.GetProjectQuery
	ListTemplates *bridgequery.ListTemplatesQuery
	Health        *bridgequery.HealthQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("sheetbridge: command/query service is required")
	}
	facade := &Facade{service: service}
	facade.commands = Commands{
		ProcessWebhook:   bridgecommand.NewProcessWebhookCommand(service),
		PurgeDedup:       bridgecommand.NewPurgeDedupCommand(service),
		RegisterTemplate: bridgecommand.NewRegisterTemplateCommand(service),
		UpsertProject:    bridgecommand.NewUpsertProjectCommand(service),
	}
	facade.queries = Queries{
		GetProject:    bridgequery.NewGetProjectQuery(service),
		ListTemplates: bridgequery.NewListTemplatesQuery(service),
		Health:        bridgequery.NewHealthQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*core.Service)(nil)
