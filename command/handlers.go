// Package command exposes the bridge's mutating operations as go-command
// messages so hosts can dispatch them through their command bus.
package command

import (
	"context"

	"github.com/bvcollective/sheetbridge/core"
	gocmd "github.com/goliatone/go-command"
)

// MutatingService is the slice of the bridge service the commands drive.
type MutatingService interface {
	ProcessWebhook(ctx context.Context, req core.InboundRequest) (core.InboundResult, error)
	PurgeDedup(ctx context.Context) (int, error)
	RegisterTemplate(ctx context.Context, template core.Template) (core.Template, error)
	UpsertProject(ctx context.Context, project core.Project) (core.Project, error)
}

type ProcessWebhookCommand struct {
	service MutatingService
}

func NewProcessWebhookCommand(service MutatingService) *ProcessWebhookCommand {
	return &ProcessWebhookCommand{service: service}
}

func (c *ProcessWebhookCommand) Execute(ctx context.Context, msg ProcessWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: webhook service is required")
	}
	out, err := c.service.ProcessWebhook(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type PurgeDedupCommand struct {
	service MutatingService
}

func NewPurgeDedupCommand(service MutatingService) *PurgeDedupCommand {
	return &PurgeDedupCommand{service: service}
}

func (c *PurgeDedupCommand) Execute(ctx context.Context, msg PurgeDedupMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: dedup service is required")
	}
	removed, err := c.service.PurgeDedup(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, removed)
	return nil
}

type RegisterTemplateCommand struct {
	service MutatingService
}

func NewRegisterTemplateCommand(service MutatingService) *RegisterTemplateCommand {
	return &RegisterTemplateCommand{service: service}
}

func (c *RegisterTemplateCommand) Execute(ctx context.Context, msg RegisterTemplateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: template service is required")
	}
	out, err := c.service.RegisterTemplate(ctx, msg.Template)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpsertProjectCommand struct {
	service MutatingService
}

func NewUpsertProjectCommand(service MutatingService) *UpsertProjectCommand {
	return &UpsertProjectCommand{service: service}
}

func (c *UpsertProjectCommand) Execute(ctx context.Context, msg UpsertProjectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: project service is required")
	}
	out, err := c.service.UpsertProject(ctx, msg.Project)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
