package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DriveItem is the subset of a drive item the bridge consumes.
type DriveItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	WebURL   string          `json:"webUrl"`
	Folder   json.RawMessage `json:"folder"`
	ParentID string          `json:"-"`
}

// IsFolder reports whether the item is a folder.
func (d DriveItem) IsFolder() bool {
	return len(d.Folder) > 0 && string(d.Folder) != "null"
}

// Site is a resolved SharePoint site.
type Site struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

// CopyItem starts an asynchronous server-side copy of item into the
// destination folder. The returned location URL monitors progress; an
// empty location means the copy completed synchronously.
func (c *Client) CopyItem(ctx context.Context, sourceDriveID, itemID, destDriveID, destFolderID, name string) (string, error) {
	tokenValue, err := c.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/drives/%s/items/%s/copy", c.apiBase, url.PathEscape(sourceDriveID), url.PathEscape(itemID))
	payload := map[string]any{
		"parentReference": map[string]any{
			"driveId": destDriveID,
			"id":      destFolderID,
		},
		"name": name,
	}
	_, headers, err := c.doRaw(ctx, http.MethodPost, endpoint, tokenValue, payload)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(headers.Get("Location")), nil
}

// CopyStatus probes a copy monitor URL. Monitor endpoints do not take
// auth headers; a 202 means still in progress.
func (c *Client) CopyStatus(ctx context.Context, location string) (map[string]any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, false, fmt.Errorf("graph: build copy status request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: copy status check failed",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return nil, false, nil
	case http.StatusOK, http.StatusSeeOther:
		var status map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			status = map[string]any{}
		}
		return status, true, nil
	default:
		return nil, false, goerrors.New(
			fmt.Sprintf("graph: copy status returned %d", resp.StatusCode),
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
}

// WaitForCopy polls a copy monitor URL until completion or timeout.
func (c *Client) WaitForCopy(ctx context.Context, location string, timeout, pollInterval time.Duration) (map[string]any, error) {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	deadline := c.now().Add(timeout)

	for {
		status, done, err := c.CopyStatus(ctx, location)
		if err != nil {
			return nil, err
		}
		if done {
			if errValue, ok := status["error"]; ok {
				return nil, goerrors.New(
					fmt.Sprintf("graph: copy operation failed: %v", errValue),
					goerrors.CategoryExternal,
				).WithTextCode("BRIDGE_UPSTREAM_FAILED")
			}
			return status, nil
		}
		if !c.now().Before(deadline) {
			return nil, goerrors.New(
				fmt.Sprintf("graph: copy operation timeout after %s", timeout),
				goerrors.CategoryExternal,
			).WithTextCode("BRIDGE_UPSTREAM_FAILED")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// DriveChildren lists the children of a folder.
func (c *Client) DriveChildren(ctx context.Context, driveID, folderID string) ([]DriveItem, error) {
	path := fmt.Sprintf("/drives/%s/items/%s/children", url.PathEscape(driveID), url.PathEscape(folderID))
	result, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeDriveItems(result)
}

// ResolveSite resolves a site by hostname and server-relative path,
// e.g. ("contoso.sharepoint.com", "Opportunities").
func (c *Client) ResolveSite(ctx context.Context, hostname, siteName string) (Site, error) {
	path := fmt.Sprintf("/sites/%s:/sites/%s", hostname, url.PathEscape(siteName))
	result, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Site{}, err
	}
	return siteFromMap(result)
}

// ResolveSiteID expands a bare site GUID into the full composite
// Graph site ID. Already-composite IDs pass through unchanged.
func (c *Client) ResolveSiteID(ctx context.Context, siteID, hostname string) (string, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return "", goerrors.New(
			"graph: site id is required",
			goerrors.CategoryBadInput,
		).WithTextCode("BRIDGE_BAD_INPUT")
	}
	if strings.Contains(siteID, ",") {
		return siteID, nil
	}
	result, err := c.Request(ctx, http.MethodGet, fmt.Sprintf("/sites/%s,%s", hostname, siteID), nil)
	if err != nil {
		return "", err
	}
	site, err := siteFromMap(result)
	if err != nil {
		return "", err
	}
	return site.ID, nil
}

// SiteDefaultDrive returns the default document-library drive ID.
func (c *Client) SiteDefaultDrive(ctx context.Context, siteID string) (string, error) {
	result, err := c.Request(ctx, http.MethodGet, fmt.Sprintf("/sites/%s/drive", siteID), nil)
	if err != nil {
		return "", err
	}
	id, _ := result["id"].(string)
	if id == "" {
		return "", goerrors.New(
			"graph: site has no default drive",
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return id, nil
}

// ItemByPath resolves a drive item by server-relative folder path.
func (c *Client) ItemByPath(ctx context.Context, siteID, folderPath string) (DriveItem, error) {
	folderPath = strings.TrimLeft(strings.TrimSpace(folderPath), "/")
	path := fmt.Sprintf("/sites/%s/drive/root:/%s", siteID, escapePathSegments(folderPath))
	result, err := c.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return DriveItem{}, err
	}
	return driveItemFromMap(result)
}

func decodeDriveItems(result map[string]any) ([]DriveItem, error) {
	raw, err := json.Marshal(result["value"])
	if err != nil {
		return nil, fmt.Errorf("graph: re-encode drive items: %w", err)
	}
	var items []DriveItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: malformed drive items",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return items, nil
}

func driveItemFromMap(result map[string]any) (DriveItem, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return DriveItem{}, fmt.Errorf("graph: re-encode drive item: %w", err)
	}
	var item DriveItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return DriveItem{}, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: malformed drive item",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	if item.ID == "" {
		return DriveItem{}, goerrors.New(
			"graph: drive item carried no id",
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return item, nil
}

func siteFromMap(result map[string]any) (Site, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Site{}, fmt.Errorf("graph: re-encode site: %w", err)
	}
	var site Site
	if err := json.Unmarshal(raw, &site); err != nil {
		return Site{}, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: malformed site",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	if site.ID == "" {
		return Site{}, goerrors.New(
			"graph: site carried no id",
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return site, nil
}

func escapePathSegments(folderPath string) string {
	segments := strings.Split(folderPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
