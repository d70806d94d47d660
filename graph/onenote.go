package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Notebook is the subset of a OneNote notebook the bridge consumes.
type Notebook struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"displayName"`
	Links       notebookLinks `json:"links"`
}

// Section is the subset of a OneNote section the bridge consumes.
type Section struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"displayName"`
	Links       notebookLinks `json:"links"`
}

// Page is a created OneNote page.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type notebookLinks struct {
	OneNoteWebURL struct {
		Href string `json:"href"`
	} `json:"oneNoteWebUrl"`
}

// WebURL returns the browser link carried by the resource, or "".
func (l notebookLinks) WebURL() string {
	return strings.TrimSpace(l.OneNoteWebURL.Href)
}

// SiteNotebooks lists the notebooks of a site.
func (c *Client) SiteNotebooks(ctx context.Context, siteID string) ([]Notebook, error) {
	result, err := c.RequestDelegated(ctx, http.MethodGet, fmt.Sprintf("/sites/%s/onenote/notebooks", siteID), nil)
	if err != nil {
		return nil, err
	}
	var notebooks []Notebook
	if err := decodeValueList(result, &notebooks); err != nil {
		return nil, err
	}
	return notebooks, nil
}

// CreateNotebook creates a notebook at the site level.
func (c *Client) CreateNotebook(ctx context.Context, siteID, displayName string) (Notebook, error) {
	result, err := c.RequestDelegated(ctx, http.MethodPost,
		fmt.Sprintf("/sites/%s/onenote/notebooks", siteID),
		map[string]any{"displayName": displayName},
	)
	if err != nil {
		return Notebook{}, err
	}
	var notebook Notebook
	if err := decodeInto(result, &notebook); err != nil {
		return Notebook{}, err
	}
	if notebook.ID == "" {
		return Notebook{}, goerrors.New(
			"graph: created notebook carried no id",
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return notebook, nil
}

// NotebookSections lists the sections of a site notebook.
func (c *Client) NotebookSections(ctx context.Context, siteID, notebookID string) ([]Section, error) {
	path := fmt.Sprintf("/sites/%s/onenote/notebooks/%s/sections", siteID, url.PathEscape(notebookID))
	result, err := c.RequestDelegated(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var sections []Section
	if err := decodeValueList(result, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// CreateSection adds a section to a site notebook.
func (c *Client) CreateSection(ctx context.Context, siteID, notebookID, displayName string) (Section, error) {
	path := fmt.Sprintf("/sites/%s/onenote/notebooks/%s/sections", siteID, url.PathEscape(notebookID))
	result, err := c.RequestDelegated(ctx, http.MethodPost, path,
		map[string]any{"displayName": displayName},
	)
	if err != nil {
		return Section{}, err
	}
	var section Section
	if err := decodeInto(result, &section); err != nil {
		return Section{}, err
	}
	if section.ID == "" {
		return Section{}, goerrors.New(
			"graph: created section carried no id",
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return section, nil
}

// CreatePage posts an HTML page into a section.
func (c *Client) CreatePage(ctx context.Context, siteID, sectionID, html string) (Page, error) {
	tokenValue, err := c.DelegatedAccessToken(ctx)
	if err != nil {
		return Page{}, err
	}
	endpoint := fmt.Sprintf("%s/sites/%s/onenote/sections/%s/pages", c.apiBase, siteID, url.PathEscape(sectionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("graph: build page request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokenValue)
	req.Header.Set("Content-Type", "application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return Page{}, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: page creation failed",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, goerrors.New(
			fmt.Sprintf("graph: page creation returned status %d", resp.StatusCode),
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		// The page exists even when the body fails to decode.
		return Page{}, nil
	}
	return page, nil
}

func decodeValueList(result map[string]any, target any) error {
	raw, err := json.Marshal(result["value"])
	if err != nil {
		return fmt.Errorf("graph: re-encode value list: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: malformed value list",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return nil
}

func decodeInto(result map[string]any, target any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("graph: re-encode response: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: malformed response",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return nil
}
