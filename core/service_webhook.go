package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DedupPurgeJobID identifies the background job that trims expired
// dedup records.
const DedupPurgeJobID = "sheetbridge.dedup.purge"

// ProcessWebhook runs one delivery through the listener pipeline and
// executes whatever action it routes to. Routing decisions come back
// synchronously; action failures map through the error taxonomy.
func (s *Service) ProcessWebhook(ctx context.Context, req InboundRequest) (result InboundResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"body_bytes": len(req.Body),
	}
	defer func() {
		fields["action"] = string(result.Action)
		s.observeOperation(ctx, startedAt, "process_webhook", err, fields)
	}()

	if s == nil || s.pipeline == nil {
		err = s.mapError(fmt.Errorf("core: webhook pipeline is required"))
		return InboundResult{Action: ActionNone}, err
	}

	action, err := s.pipeline.Process(ctx, req)
	if err != nil {
		err = s.mapError(err)
		return InboundResult{Action: ActionNone}, err
	}

	switch action.Kind {
	case ActionChallenge:
		result = InboundResult{Action: ActionChallenge, Challenge: action.Challenge}
		return result, nil
	case ActionEarlyStage:
		fields["project_id"] = action.Project.ProjectID
		fields["project_type"] = action.Project.ProjectType
		fields["row_id"] = action.Project.RowID
		outcome, actionErr := s.handleEarlyStage(ctx, action.Project)
		if actionErr != nil {
			err = s.mapError(actionErr)
			return InboundResult{Action: ActionEarlyStage}, err
		}
		result = InboundResult{Action: ActionEarlyStage, Outcome: &outcome}
		return result, nil
	case ActionDealWon:
		fields["project_id"] = action.Project.ProjectID
		fields["project_type"] = action.Project.ProjectType
		fields["row_id"] = action.Project.RowID
		outcome, actionErr := s.handleDealWon(ctx, action.Project)
		if actionErr != nil {
			err = s.mapError(actionErr)
			return InboundResult{Action: ActionDealWon}, err
		}
		result = InboundResult{Action: ActionDealWon, Outcome: &outcome}
		return result, nil
	default:
		result = InboundResult{Action: ActionNone, Reason: action.Reason}
		return result, nil
	}
}

// handleDealWon provisions the template folders for the project,
// ensures its notebook section, and writes the notebook link back to
// the triggering row.
func (s *Service) handleDealWon(ctx context.Context, info ProjectInfo) (ActionOutcome, error) {
	projectID := strings.TrimSpace(info.ProjectID)
	projectType := strings.TrimSpace(info.ProjectType)
	if projectID == "" || projectType == "" {
		return ActionOutcome{}, goerrors.New(
			"core: project id and project type are required",
			goerrors.CategoryBadInput,
		).WithTextCode(BridgeErrorBadInput)
	}

	project, err := s.lookupProject(ctx, projectID)
	if err != nil {
		return ActionOutcome{}, err
	}

	outcome := ActionOutcome{
		ProjectID:   projectID,
		ProjectType: projectType,
		ProjectName: project.ProjectName,
		RowID:       info.RowID,
	}

	if s.provisioner != nil {
		summary, copyErr := s.provisioner.CopyForCategory(ctx, ProvisionRequest{
			DriveID:      project.DriveID,
			FolderID:     project.JobFolderID,
			Category:     project.ProjectType,
			ProjectName:  project.ProjectName,
			SkipExisting: true,
		})
		if copyErr != nil {
			return ActionOutcome{}, copyErr
		}
		outcome.Folders = summary
	}

	notebook, err := s.publishSection(ctx, project, info)
	if err != nil {
		return ActionOutcome{}, err
	}
	outcome.Notebook = notebook

	outcome.RowUpdated = s.annotateRow(ctx, info, project, notebook)
	return outcome, nil
}

// handleEarlyStage is the lightweight variant for freshly created
// rows. It publishes the notebook section and page without touching
// template folders.
func (s *Service) handleEarlyStage(ctx context.Context, info ProjectInfo) (ActionOutcome, error) {
	key := strings.TrimSpace(info.ProjectID)
	if key == "" {
		key = strings.TrimSpace(info.ProjectType)
	}
	if key == "" {
		return ActionOutcome{}, goerrors.New(
			"core: project id or project type is required",
			goerrors.CategoryBadInput,
		).WithTextCode(BridgeErrorBadInput)
	}

	project, err := s.lookupProject(ctx, key)
	if err != nil {
		return ActionOutcome{}, err
	}

	outcome := ActionOutcome{
		ProjectID:   strings.TrimSpace(info.ProjectID),
		ProjectType: strings.TrimSpace(info.ProjectType),
		ProjectName: project.ProjectName,
		RowID:       info.RowID,
	}

	notebook, err := s.publishSection(ctx, project, info)
	if err != nil {
		return ActionOutcome{}, err
	}
	outcome.Notebook = notebook

	outcome.RowUpdated = s.annotateRow(ctx, info, project, notebook)
	return outcome, nil
}

func (s *Service) lookupProject(ctx context.Context, key string) (Project, error) {
	if s.projectStore == nil {
		return Project{}, goerrors.New(
			"core: project store is required",
			goerrors.CategoryInternal,
		).WithTextCode(BridgeErrorInternal)
	}
	project, found, err := s.projectStore.GetByKey(ctx, key)
	if err != nil {
		return Project{}, err
	}
	if !found {
		return Project{}, goerrors.New(
			fmt.Sprintf("core: no project metadata found for %q", key),
			goerrors.CategoryNotFound,
		).WithTextCode(BridgeErrorNotFound).WithMetadata(map[string]any{"project_key": key})
	}
	return project, nil
}

func (s *Service) publishSection(ctx context.Context, project Project, info ProjectInfo) (SectionResult, error) {
	if s.publisher == nil {
		return SectionResult{}, nil
	}
	sectionName := project.ProjectName
	if oppID := strings.TrimSpace(info.ProjectID); oppID != "" {
		sectionName = fmt.Sprintf("%s - %s", project.ProjectName, oppID)
	}
	return s.publisher.PublishProjectSection(ctx, PublishRequest{
		SiteID:         project.SiteID,
		ParentFolderID: project.ParentFolderID,
		NotebookName:   project.CompanyName,
		SectionName:    sectionName,
		Fields:         copyStringMap(info.Cells),
	})
}

// annotateRow is best-effort: a failed write-back never fails the
// action, the notebook work already happened.
func (s *Service) annotateRow(ctx context.Context, info ProjectInfo, project Project, notebook SectionResult) bool {
	if s.annotator == nil || info.SheetID == 0 || info.RowID == 0 {
		return false
	}
	url := strings.TrimSpace(notebook.SectionURL)
	if url == "" {
		url = strings.TrimSpace(notebook.NotebookURL)
	}
	if url == "" {
		return false
	}
	display := info.Cell(s.config.Smartsheet.DescriptionColumnID)
	if display == "" {
		display = strings.TrimSpace(notebook.NotebookName)
	}
	if display == "" {
		display = project.ProjectName
	}
	if err := s.annotator.WriteNotebookLink(ctx, info.SheetID, info.RowID, display, url); err != nil {
		s.logError(ctx, "notebook link write-back failed", map[string]any{
			"row_id":   info.RowID,
			"sheet_id": info.SheetID,
			"error":    err.Error(),
		})
		return false
	}
	return true
}

// PurgeDedup trims expired dedup records from the layered store.
func (s *Service) PurgeDedup(ctx context.Context) (removed int, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["removed"] = removed
		s.observeOperation(ctx, startedAt, "purge_dedup", err, fields)
	}()

	if s == nil || s.dedupStore == nil {
		err = s.mapError(fmt.Errorf("core: dedup store is required"))
		return 0, err
	}
	removed, err = s.dedupStore.PurgeExpired(ctx)
	if err != nil {
		err = s.mapError(err)
		return 0, err
	}
	return removed, nil
}

// EnqueueDedupPurge schedules a purge run through the job adapter.
func (s *Service) EnqueueDedupPurge(ctx context.Context) error {
	if s == nil || s.jobEnqueuer == nil {
		return s.mapError(fmt.Errorf("core: job enqueuer is required"))
	}
	return s.mapError(s.jobEnqueuer.Enqueue(ctx, JobExecutionMessage{
		JobID:      DedupPurgeJobID,
		Parameters: map[string]any{},
	}))
}
