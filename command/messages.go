package command

import (
	"fmt"
	"strings"

	"github.com/bvcollective/sheetbridge/core"
)

const (
	TypeProcessWebhook   = "sheetbridge.command.webhook.process"
	TypePurgeDedup       = "sheetbridge.command.dedup.purge"
	TypeRegisterTemplate = "sheetbridge.command.template.register"
	TypeUpsertProject    = "sheetbridge.command.project.upsert"
)

type ProcessWebhookMessage struct {
	Request core.InboundRequest
}

func (ProcessWebhookMessage) Type() string { return TypeProcessWebhook }

func (m ProcessWebhookMessage) Validate() error {
	if len(m.Request.Body) == 0 {
		return commandInvalidInputError("command: webhook body is required")
	}
	return nil
}

type PurgeDedupMessage struct{}

func (PurgeDedupMessage) Type() string { return TypePurgeDedup }

func (PurgeDedupMessage) Validate() error { return nil }

type RegisterTemplateMessage struct {
	Template core.Template
}

func (RegisterTemplateMessage) Type() string { return TypeRegisterTemplate }

func (m RegisterTemplateMessage) Validate() error {
	if strings.TrimSpace(m.Template.Category) == "" {
		return commandValidationError("category", "template category is required")
	}
	if strings.TrimSpace(m.Template.Name) == "" {
		return commandValidationError("name", "template name is required")
	}
	if strings.TrimSpace(m.Template.TemplateFolderID) == "" {
		return commandValidationError("template_folder_id", "template folder id is required")
	}
	return nil
}

type UpsertProjectMessage struct {
	Project core.Project
}

func (UpsertProjectMessage) Type() string { return TypeUpsertProject }

func (m UpsertProjectMessage) Validate() error {
	if strings.TrimSpace(m.Project.Key) == "" {
		return commandValidationError("key", "project key is required")
	}
	if strings.TrimSpace(m.Project.ProjectType) == "" {
		return commandValidationError("project_type", fmt.Sprintf("project type is required for key %q", m.Project.Key))
	}
	return nil
}
