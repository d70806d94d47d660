package query

import (
	"strings"
)

const (
	TypeGetProject    = "sheetbridge.query.project.get"
	TypeListTemplates = "sheetbridge.query.template.list"
	TypeHealth        = "sheetbridge.query.health"
)

type GetProjectMessage struct {
	Key string
}

func (GetProjectMessage) Type() string { return TypeGetProject }

func (m GetProjectMessage) Validate() error {
	if strings.TrimSpace(m.Key) == "" {
		return queryValidationError("key", "project key is required")
	}
	return nil
}

type ListTemplatesMessage struct {
	Category string
}

func (ListTemplatesMessage) Type() string { return TypeListTemplates }

func (m ListTemplatesMessage) Validate() error {
	if strings.TrimSpace(m.Category) == "" {
		return queryValidationError("category", "template category is required")
	}
	return nil
}

type HealthMessage struct{}

func (HealthMessage) Type() string { return TypeHealth }

func (HealthMessage) Validate() error { return nil }
