package onenote

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/bvcollective/sheetbridge/core"
	"github.com/bvcollective/sheetbridge/graph"
)

const (
	// Column IDs for the fields rendered on a project page, in display order.
	columnProjectCategory = "5878702367002500"
	columnProjectName     = "3534360453271428"
	columnDescription     = "1375102739632004"
	columnCompanyName     = "1475623376867204"
	columnCustomerContact = "7911781646421892"
	columnSiteAddress     = "1611314616291204"
	columnOpportunityID   = "3408182019051396"

	notebookSuffix = " - Public"
	untitledName   = "Untitled"
	maxNameLength  = 120
)

// pageColumns maps column IDs to the friendly labels shown in the page table.
var pageColumns = []struct {
	ID    string
	Label string
}{
	{columnProjectCategory, "Project Category"},
	{columnProjectName, "Project Name"},
	{columnDescription, "Description"},
	{columnCompanyName, "Company Name"},
	{columnCustomerContact, "Customer Contact"},
	{columnSiteAddress, "Site Address"},
	{columnOpportunityID, "Opportunity ID"},
}

var (
	forbiddenNameChars = regexp.MustCompile(`[?*\\/:<>|'"&#%~]`)
	collapseWhitespace = regexp.MustCompile(`\s+`)
	betweenTags        = regexp.MustCompile(`>\s+<`)
	emailPattern       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// GraphAPI is the subset of the Graph client the manager needs.
type GraphAPI interface {
	ResolveSiteID(ctx context.Context, siteID, hostname string) (string, error)
	SiteNotebooks(ctx context.Context, siteID string) ([]graph.Notebook, error)
	CreateNotebook(ctx context.Context, siteID, displayName string) (graph.Notebook, error)
	NotebookSections(ctx context.Context, siteID, notebookID string) ([]graph.Section, error)
	CreateSection(ctx context.Context, siteID, notebookID, displayName string) (graph.Section, error)
	CreatePage(ctx context.Context, siteID, sectionID, html string) (graph.Page, error)
}

// Manager publishes project sections into company notebooks.
type Manager struct {
	graph    GraphAPI
	hostname string
	logger   core.Logger
}

// Config carries Manager construction parameters.
type Config struct {
	Graph    GraphAPI
	Hostname string
	Logger   core.Logger
}

// New builds a Manager. The Graph client is required.
func New(cfg Config) (*Manager, error) {
	if cfg.Graph == nil {
		return nil, fmt.Errorf("onenote: graph client is required")
	}
	return &Manager{
		graph:    cfg.Graph,
		hostname: strings.TrimSpace(cfg.Hostname),
		logger:   cfg.Logger,
	}, nil
}

// PublishProjectSection ensures the company notebook and project section
// exist, then creates a page carrying the project's row data. Existing
// notebooks and sections are reused; only the page is always created.
func (m *Manager) PublishProjectSection(ctx context.Context, req core.PublishRequest) (core.SectionResult, error) {
	if m == nil || m.graph == nil {
		return core.SectionResult{}, fmt.Errorf("onenote: manager is not configured")
	}
	sectionName := strings.TrimSpace(req.SectionName)
	if sectionName == "" {
		return core.SectionResult{}, fmt.Errorf("onenote: section name is required")
	}

	company := strings.TrimSpace(req.Fields[columnCompanyName])
	if company == "" {
		company = strings.TrimSpace(req.NotebookName)
	}
	notebookName := SanitizeName(company) + notebookSuffix

	siteID, err := m.graph.ResolveSiteID(ctx, req.SiteID, m.hostname)
	if err != nil {
		return core.SectionResult{}, err
	}

	notebook, err := m.ensureNotebook(ctx, siteID, notebookName)
	if err != nil {
		return core.SectionResult{}, err
	}

	section, created, err := m.ensureSection(ctx, siteID, notebook.ID, sectionName)
	if err != nil {
		return core.SectionResult{}, err
	}

	pageHTML := BuildPageHTML(m.pageTitle(req), req.Fields)
	page, err := m.graph.CreatePage(ctx, siteID, section.ID, pageHTML)
	if err != nil {
		return core.SectionResult{}, err
	}

	result := core.SectionResult{
		NotebookID:     notebook.ID,
		NotebookName:   notebookName,
		NotebookURL:    notebook.Links.WebURL(),
		SectionID:      section.ID,
		SectionName:    sectionName,
		SectionURL:     section.Links.WebURL(),
		PageID:         page.ID,
		SectionCreated: created,
	}
	if m.logger != nil {
		m.logger.Info("published project section",
			"notebook", notebookName, "section", sectionName, "section_created", created)
	}
	return result, nil
}

func (m *Manager) ensureNotebook(ctx context.Context, siteID, name string) (graph.Notebook, error) {
	notebook, found, err := m.findNotebook(ctx, siteID, name)
	if err != nil {
		return graph.Notebook{}, err
	}
	if found {
		return notebook, nil
	}
	created, err := m.graph.CreateNotebook(ctx, siteID, name)
	if err == nil {
		return created, nil
	}
	// A concurrent delivery may have created the notebook between the list
	// and the create call. Creation conflicts resolve to the existing one.
	notebook, found, findErr := m.findNotebook(ctx, siteID, name)
	if findErr == nil && found {
		if m.logger != nil {
			m.logger.Info("notebook create conflicted, reusing existing", "notebook", name)
		}
		return notebook, nil
	}
	return graph.Notebook{}, err
}

func (m *Manager) findNotebook(ctx context.Context, siteID, name string) (graph.Notebook, bool, error) {
	notebooks, err := m.graph.SiteNotebooks(ctx, siteID)
	if err != nil {
		return graph.Notebook{}, false, err
	}
	for _, nb := range notebooks {
		if nb.DisplayName == name {
			return nb, true, nil
		}
	}
	return graph.Notebook{}, false, nil
}

func (m *Manager) ensureSection(ctx context.Context, siteID, notebookID, name string) (graph.Section, bool, error) {
	sections, err := m.graph.NotebookSections(ctx, siteID, notebookID)
	if err != nil {
		return graph.Section{}, false, err
	}
	for _, sec := range sections {
		if sec.DisplayName == name {
			return sec, false, nil
		}
	}
	section, err := m.graph.CreateSection(ctx, siteID, notebookID, name)
	if err != nil {
		return graph.Section{}, false, err
	}
	return section, true, nil
}

func (m *Manager) pageTitle(req core.PublishRequest) string {
	projectName := strings.TrimSpace(req.Fields[columnProjectName])
	if projectName == "" {
		projectName = strings.TrimSpace(req.SectionName)
	}
	oppID := strings.TrimSpace(req.Fields[columnOpportunityID])
	if oppID == "" {
		return projectName
	}
	return projectName + " - " + oppID
}

// SanitizeName strips characters OneNote rejects in notebook and section
// names. An empty result becomes "Untitled".
func SanitizeName(name string) string {
	cleaned := forbiddenNameChars.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(collapseWhitespace.ReplaceAllString(cleaned, " "))
	if len(cleaned) > maxNameLength {
		cleaned = strings.TrimSpace(cleaned[:maxNameLength])
	}
	if cleaned == "" {
		return untitledName
	}
	return cleaned
}

// CleanText flattens newlines and repeated whitespace so cell values render
// as a single line inside the page table.
func CleanText(text string) string {
	replaced := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\\n", " ").Replace(text)
	return strings.TrimSpace(collapseWhitespace.ReplaceAllString(replaced, " "))
}

// BuildPageHTML renders the minified two-column page body for a project.
// Values are HTML-escaped; the customer contact renders as a mailto link
// when the value is an email address.
func BuildPageHTML(title string, fields map[string]string) string {
	cleanTitle := CleanText(title)

	var rows strings.Builder
	for _, col := range pageColumns {
		value := CleanText(fields[col.ID])
		cell := html.EscapeString(value)
		if col.ID == columnCustomerContact {
			if link := mailtoLink(value); link != "" {
				cell = link
			}
		}
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td></tr>", col.Label, cell)
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>%s</title>
  <meta charset='utf-8' />
</head>
<body>
  <table border='1' cellpadding='5' style='border-collapse:collapse;'>
    <thead>
      <tr><th>Field</th><th>Value</th></tr>
    </thead>
    <tbody>
      %s
    </tbody>
  </table>
</body>
</html>`, html.EscapeString(cleanTitle), rows.String())

	page = strings.ReplaceAll(page, "\r", "")
	page = strings.ReplaceAll(page, "\n", "")
	return strings.TrimSpace(betweenTags.ReplaceAllString(page, "><"))
}

// mailtoLink renders an email address, optionally prefixed with a display
// name, as a mailto anchor. Returns "" when the value holds no address.
func mailtoLink(value string) string {
	name := ""
	email := value
	if open := strings.IndexByte(value, '<'); open >= 0 && strings.HasSuffix(value, ">") {
		name = strings.TrimSpace(value[:open])
		email = strings.TrimSpace(value[open+1 : len(value)-1])
	}
	if !emailPattern.MatchString(email) {
		return ""
	}
	display := email
	if name != "" {
		display = name
	}
	return fmt.Sprintf(`<a href="mailto:%s">%s</a>`, html.EscapeString(email), html.EscapeString(display))
}

var _ core.NotebookPublisher = (*Manager)(nil)
