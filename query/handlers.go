// Package query exposes the bridge's read operations as go-command query
// messages.
package query

import (
	"context"

	"github.com/bvcollective/sheetbridge/core"
)

type ProjectReader interface {
	GetProject(ctx context.Context, key string) (core.Project, error)
}

type TemplateReader interface {
	ListTemplates(ctx context.Context, category string) ([]core.Template, error)
}

type HealthReader interface {
	Health(ctx context.Context) core.HealthReport
}

type GetProjectQuery struct {
	reader ProjectReader
}

func NewGetProjectQuery(reader ProjectReader) *GetProjectQuery {
	return &GetProjectQuery{reader: reader}
}

func (q *GetProjectQuery) Query(ctx context.Context, msg GetProjectMessage) (core.Project, error) {
	if q == nil || q.reader == nil {
		return core.Project{}, queryDependencyError("query: project reader is required")
	}
	return q.reader.GetProject(ctx, msg.Key)
}

type ListTemplatesQuery struct {
	reader TemplateReader
}

func NewListTemplatesQuery(reader TemplateReader) *ListTemplatesQuery {
	return &ListTemplatesQuery{reader: reader}
}

func (q *ListTemplatesQuery) Query(ctx context.Context, msg ListTemplatesMessage) ([]core.Template, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: template reader is required")
	}
	return q.reader.ListTemplates(ctx, msg.Category)
}

type HealthQuery struct {
	reader HealthReader
}

func NewHealthQuery(reader HealthReader) *HealthQuery {
	return &HealthQuery{reader: reader}
}

func (q *HealthQuery) Query(ctx context.Context, msg HealthMessage) (core.HealthReport, error) {
	if q == nil || q.reader == nil {
		return core.HealthReport{}, queryDependencyError("query: health reader is required")
	}
	return q.reader.Health(ctx), nil
}
