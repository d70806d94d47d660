package folders

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/bvcollective/sheetbridge/core"
	"github.com/bvcollective/sheetbridge/graph"
)

var graphItemPattern = regexp.MustCompile(`/drives/([^/]+)/items/([^/?]+)`)

// GraphAPI is the Graph surface the folder manager depends on.
type GraphAPI interface {
	DriveChildren(ctx context.Context, driveID, folderID string) ([]graph.DriveItem, error)
	CopyItem(ctx context.Context, sourceDriveID, itemID, destDriveID, destFolderID, name string) (string, error)
	WaitForCopy(ctx context.Context, location string, timeout, pollInterval time.Duration) (map[string]any, error)
	ResolveSite(ctx context.Context, hostname, siteName string) (graph.Site, error)
	SiteDefaultDrive(ctx context.Context, siteID string) (string, error)
	ItemByPath(ctx context.Context, siteID, folderPath string) (graph.DriveItem, error)
}

// Manager copies template folders into project destinations.
type Manager struct {
	graph        GraphAPI
	templates    core.TemplateStore
	logger       glog.Logger
	copyTimeout  time.Duration
	pollInterval time.Duration
}

type Config struct {
	Graph        GraphAPI
	Templates    core.TemplateStore
	Logger       glog.Logger
	CopyTimeout  time.Duration
	PollInterval time.Duration
}

func New(cfg Config) (*Manager, error) {
	if cfg.Graph == nil {
		return nil, goerrors.New(
			"folders: graph client is required",
			goerrors.CategoryBadInput,
		).WithTextCode(core.BridgeErrorBadInput)
	}
	copyTimeout := cfg.CopyTimeout
	if copyTimeout <= 0 {
		copyTimeout = 5 * time.Minute
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Manager{
		graph:        cfg.Graph,
		templates:    cfg.Templates,
		logger:       glog.Ensure(cfg.Logger),
		copyTimeout:  copyTimeout,
		pollInterval: pollInterval,
	}, nil
}

// ParseFolderLink extracts (driveID, folderID) from a SharePoint
// browser link or a Graph API item URL.
func (m *Manager) ParseFolderLink(ctx context.Context, link string) (string, string, error) {
	link = strings.TrimSpace(link)
	switch {
	case strings.Contains(link, "sharepoint.com"):
		return m.parseSharePointLink(ctx, link)
	case strings.Contains(link, "graph.microsoft.com"):
		return parseGraphLink(link)
	default:
		return "", "", goerrors.New(
			fmt.Sprintf("folders: unsupported folder link format: %s", link),
			goerrors.CategoryBadInput,
		).WithTextCode(core.BridgeErrorBadInput)
	}
}

func (m *Manager) parseSharePointLink(ctx context.Context, link string) (string, string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", "", goerrors.Wrap(
			err, goerrors.CategoryBadInput,
			"folders: invalid folder link",
		).WithTextCode(core.BridgeErrorBadInput)
	}

	siteName := ""
	parts := strings.Split(parsed.Path, "/")
	for i, part := range parts {
		if part == "sites" && i+1 < len(parts) {
			siteName = parts[i+1]
			break
		}
	}
	if siteName == "" {
		return "", "", goerrors.New(
			"folders: folder link has no site segment",
			goerrors.CategoryBadInput,
		).WithTextCode(core.BridgeErrorBadInput)
	}

	site, err := m.graph.ResolveSite(ctx, parsed.Hostname(), siteName)
	if err != nil {
		return "", "", err
	}
	driveID, err := m.graph.SiteDefaultDrive(ctx, site.ID)
	if err != nil {
		return "", "", err
	}

	folderPath := parsed.Query().Get("id")
	if folderPath == "" {
		marker := fmt.Sprintf("/sites/%s/", siteName)
		if idx := strings.Index(parsed.Path, marker); idx >= 0 {
			folderPath = parsed.Path[idx+len(marker):]
		}
	}
	folderPath = strings.TrimLeft(folderPath, "/")
	if folderPath == "" {
		return "", "", goerrors.New(
			"folders: folder link has no folder path",
			goerrors.CategoryBadInput,
		).WithTextCode(core.BridgeErrorBadInput)
	}
	if unescaped, unescapeErr := url.QueryUnescape(folderPath); unescapeErr == nil {
		folderPath = unescaped
	}

	item, err := m.graph.ItemByPath(ctx, site.ID, folderPath)
	if err != nil {
		return "", "", err
	}
	return driveID, item.ID, nil
}

func parseGraphLink(link string) (string, string, error) {
	match := graphItemPattern.FindStringSubmatch(link)
	if match == nil {
		return "", "", goerrors.New(
			"folders: could not extract drive and item ids from link",
			goerrors.CategoryBadInput,
		).WithTextCode(core.BridgeErrorBadInput)
	}
	return match[1], match[2], nil
}

// CopyForCategory copies every template registered for the category
// into the destination folder. Copied folders are named
// "{template} - {project}". Per-template failures degrade the summary
// without aborting the run.
func (m *Manager) CopyForCategory(ctx context.Context, req core.ProvisionRequest) (core.CopySummary, error) {
	if m == nil || m.templates == nil {
		return core.CopySummary{}, goerrors.New(
			"folders: template store is required",
			goerrors.CategoryInternal,
		).WithTextCode(core.BridgeErrorInternal)
	}

	templates, err := m.templates.ListByCategory(ctx, req.Category)
	if err != nil {
		return core.CopySummary{}, err
	}
	if len(templates) == 0 {
		m.logger.Info("no templates registered for category", "category", req.Category)
		return core.CopySummary{}, nil
	}

	existing := map[string]bool{}
	if req.SkipExisting {
		children, listErr := m.graph.DriveChildren(ctx, req.DriveID, req.FolderID)
		if listErr != nil {
			return core.CopySummary{}, listErr
		}
		for _, child := range children {
			if child.IsFolder() {
				existing[child.Name] = true
			}
		}
	}

	summary := core.CopySummary{Total: len(templates)}
	for _, template := range templates {
		folderName := fmt.Sprintf("%s - %s", template.Name, req.ProjectName)
		detail := core.CopyDetail{Template: template.Name, FolderName: folderName}

		if req.SkipExisting && existing[folderName] {
			m.logger.Info("folder already exists, skipping copy", "folder", folderName)
			detail.Skipped = true
			summary.Skipped++
			summary.Details = append(summary.Details, detail)
			continue
		}

		sourceDriveID := strings.TrimSpace(template.DriveID)
		if sourceDriveID == "" {
			sourceDriveID = req.DriveID
		}
		if copyErr := m.copyTemplateChildren(ctx, sourceDriveID, template.TemplateFolderID, req.DriveID, req.FolderID); copyErr != nil {
			m.logger.Error("template copy failed",
				"template", template.Name, "folder", folderName, "error", copyErr.Error())
			detail.Err = copyErr.Error()
			summary.Failed++
			summary.Details = append(summary.Details, detail)
			continue
		}
		summary.Copied++
		summary.Details = append(summary.Details, detail)
		m.logger.Info("template copied", "template", template.Name, "folder", folderName)
	}
	return summary, nil
}

// copyTemplateChildren copies each child of the template folder into
// the destination, waiting out asynchronous copies.
func (m *Manager) copyTemplateChildren(ctx context.Context, sourceDriveID, templateID, destDriveID, destFolderID string) error {
	children, err := m.graph.DriveChildren(ctx, sourceDriveID, templateID)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return goerrors.New(
			fmt.Sprintf("folders: template folder %s has no children", templateID),
			goerrors.CategoryNotFound,
		).WithTextCode(core.BridgeErrorNotFound)
	}

	for _, child := range children {
		location, copyErr := m.graph.CopyItem(ctx, sourceDriveID, child.ID, destDriveID, destFolderID, child.Name)
		if copyErr != nil {
			return copyErr
		}
		if location == "" {
			continue
		}
		if _, waitErr := m.graph.WaitForCopy(ctx, location, m.copyTimeout, m.pollInterval); waitErr != nil {
			return waitErr
		}
	}
	return nil
}

var _ core.TemplateProvisioner = (*Manager)(nil)
