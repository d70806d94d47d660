package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RegisterTemplate upserts a template folder mapping for a project
// category. Templates drive what gets copied when a deal closes.
func (s *Service) RegisterTemplate(ctx context.Context, template Template) (saved Template, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"category": template.Category,
		"template": template.Name,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "register_template", err, fields)
	}()

	if s == nil || s.templateStore == nil {
		err = s.mapError(fmt.Errorf("core: template store is required"))
		return Template{}, err
	}
	if strings.TrimSpace(template.Category) == "" || strings.TrimSpace(template.Name) == "" {
		err = s.mapError(fmt.Errorf("core: template category and name are required"))
		return Template{}, err
	}
	saved, err = s.templateStore.Save(ctx, template)
	if err != nil {
		err = s.mapError(err)
		return Template{}, err
	}
	return saved, nil
}

// UpsertProject records or refreshes the SharePoint coordinates for a
// project key so later deliveries can resolve it.
func (s *Service) UpsertProject(ctx context.Context, project Project) (saved Project, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project_key": project.Key,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "upsert_project", err, fields)
	}()

	if s == nil || s.projectStore == nil {
		err = s.mapError(fmt.Errorf("core: project store is required"))
		return Project{}, err
	}
	if strings.TrimSpace(project.Key) == "" {
		err = s.mapError(fmt.Errorf("core: project key is required"))
		return Project{}, err
	}
	saved, err = s.projectStore.Save(ctx, project)
	if err != nil {
		err = s.mapError(err)
		return Project{}, err
	}
	return saved, nil
}
