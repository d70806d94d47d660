package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// GetProject loads the stored SharePoint coordinates for a project key.
func (s *Service) GetProject(ctx context.Context, key string) (project Project, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project_key": key,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "get_project", err, fields)
	}()

	if s == nil || s.projectStore == nil {
		err = s.mapError(fmt.Errorf("core: project store is required"))
		return Project{}, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		err = s.mapError(fmt.Errorf("core: project key is required"))
		return Project{}, err
	}
	found := false
	project, found, err = s.projectStore.GetByKey(ctx, key)
	if err != nil {
		err = s.mapError(err)
		return Project{}, err
	}
	if !found {
		err = goerrors.New("core: no project metadata for key", goerrors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode(BridgeErrorNotFound).
			WithMetadata(map[string]any{"project_key": key})
		return Project{}, err
	}
	return project, nil
}

// ListTemplates returns the template folders registered for a category.
func (s *Service) ListTemplates(ctx context.Context, category string) (templates []Template, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"category": category,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "list_templates", err, fields)
	}()

	if s == nil || s.templateStore == nil {
		err = s.mapError(fmt.Errorf("core: template store is required"))
		return nil, err
	}
	if strings.TrimSpace(category) == "" {
		err = s.mapError(fmt.Errorf("core: template category is required"))
		return nil, err
	}
	templates, err = s.templateStore.ListByCategory(ctx, strings.TrimSpace(category))
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	return templates, nil
}
