package smartsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	defaultAPIBase        = "https://api.smartsheet.com/2.0"
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 4 << 20
)

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Row is one sheet row with its cells keyed by column ID.
type Row struct {
	ID         int64
	RowNumber  int64
	SheetID    int64
	ModifiedAt string
	Cells      map[string]CellValue
}

// Column describes one sheet column.
type Column struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type Config struct {
	APIBase              string
	Token                string
	Timeout              time.Duration
	NotebookLinkColumnID int64
	Client               HTTPDoer
	Logger               glog.Logger
}

// Client talks to the Smartsheet REST API.
type Client struct {
	apiBase              string
	token                string
	notebookLinkColumnID int64
	client               HTTPDoer
	logger               glog.Logger
}

func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, goerrors.New(
			"smartsheet: token is required",
			goerrors.CategoryBadInput,
		).WithTextCode("BRIDGE_BAD_INPUT")
	}
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiBase:              apiBase,
		token:                token,
		notebookLinkColumnID: cfg.NotebookLinkColumnID,
		client:               client,
		logger:               glog.Ensure(cfg.Logger),
	}, nil
}

// GetRow fetches a row with display values included.
func (c *Client) GetRow(ctx context.Context, sheetID, rowID int64) (Row, error) {
	if c == nil {
		return Row{}, fmt.Errorf("smartsheet: client is not initialized")
	}
	path := fmt.Sprintf("/sheets/%d/rows/%d", sheetID, rowID)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Row{}, err
	}

	var wire struct {
		ID         int64             `json:"id"`
		RowNumber  int64             `json:"rowNumber"`
		ModifiedAt string            `json:"modifiedAt"`
		Cells      []json.RawMessage `json:"cells"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return Row{}, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"smartsheet: malformed row response",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}

	row := Row{
		ID:         wire.ID,
		RowNumber:  wire.RowNumber,
		SheetID:    sheetID,
		ModifiedAt: wire.ModifiedAt,
		Cells:      make(map[string]CellValue, len(wire.Cells)),
	}
	for _, raw := range wire.Cells {
		columnID, value, decodeErr := DecodeCell(raw)
		if decodeErr != nil {
			c.logger.Error("skipping malformed cell", "row_id", rowID, "error", decodeErr.Error())
			continue
		}
		row.Cells[columnID] = value
	}
	return row, nil
}

// GetColumns lists the columns of a sheet.
func (c *Client) GetColumns(ctx context.Context, sheetID int64) ([]Column, error) {
	if c == nil {
		return nil, fmt.Errorf("smartsheet: client is not initialized")
	}
	path := fmt.Sprintf("/sheets/%d/columns?level=2", sheetID)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var wire struct {
		Data []Column `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"smartsheet: malformed columns response",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return wire.Data, nil
}

// BuildColumnMapping maps column titles to decimal column IDs for the
// requested titles. Missing titles are omitted rather than treated as
// errors.
func (c *Client) BuildColumnMapping(ctx context.Context, sheetID int64, titles []string) (map[string]string, error) {
	columns, err := c.GetColumns(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(titles))
	for _, title := range titles {
		wanted[strings.TrimSpace(title)] = true
	}
	mapping := map[string]string{}
	for _, column := range columns {
		title := strings.TrimSpace(column.Title)
		if len(wanted) > 0 && !wanted[title] {
			continue
		}
		mapping[title] = fmt.Sprintf("%d", column.ID)
	}
	return mapping, nil
}

// WriteNotebookLink updates the notebook-link column of a row with a
// hyperlinked display value.
func (c *Client) WriteNotebookLink(ctx context.Context, sheetID, rowID int64, display, url string) error {
	return c.UpdateRowHyperlink(ctx, sheetID, rowID, 0, display, url)
}

// UpdateRowHyperlink writes display text plus hyperlink into columnID.
// A zero columnID falls back to the configured notebook-link column.
func (c *Client) UpdateRowHyperlink(ctx context.Context, sheetID, rowID, columnID int64, display, url string) error {
	if c == nil {
		return fmt.Errorf("smartsheet: client is not initialized")
	}
	display = strings.TrimSpace(display)
	url = strings.TrimSpace(url)
	if display == "" || url == "" {
		return goerrors.New(
			"smartsheet: display text and url are required",
			goerrors.CategoryBadInput,
		).WithTextCode("BRIDGE_BAD_INPUT")
	}
	if columnID == 0 {
		columnID = c.notebookLinkColumnID
	}
	if columnID == 0 {
		return goerrors.New(
			"smartsheet: notebook link column id is required",
			goerrors.CategoryBadInput,
		).WithTextCode("BRIDGE_BAD_INPUT")
	}

	payload := map[string]any{
		"id": rowID,
		"cells": []map[string]any{
			{
				"columnId": columnID,
				"value":    display,
				"hyperlink": map[string]any{
					"url": url,
				},
			},
		},
	}
	path := fmt.Sprintf("/sheets/%d/rows", sheetID)
	if _, err := c.do(ctx, http.MethodPut, path, payload); err != nil {
		return err
	}
	c.logger.Info("row updated with notebook link", "sheet_id", sheetID, "row_id", rowID)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("smartsheet: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return nil, fmt.Errorf("smartsheet: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			fmt.Sprintf("smartsheet: %s %s failed", method, path),
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"smartsheet: read response body",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, goerrors.New(
			fmt.Sprintf("smartsheet: %s %s returned status %d", method, path, resp.StatusCode),
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED").WithMetadata(map[string]any{
			"status": resp.StatusCode,
			"body":   truncate(string(data), 512),
		})
	}
	return data, nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
