package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	defaultAPIBase        = "https://graph.microsoft.com/v1.0"
	defaultLoginBase      = "https://login.microsoftonline.com"
	defaultScope          = "https://graph.microsoft.com/.default"
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 8 << 20

	// Token expiry is padded so a token never dies mid-request chain.
	tokenExpiryBuffer = 5 * time.Minute
)

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	APIBase               string
	LoginBase             string
	TenantID              string
	ClientID              string
	ClientSecret          string
	DelegatedClientID     string
	DelegatedRefreshToken string
	Scope                 string
	Timeout               time.Duration
	Client                HTTPDoer
	Logger                glog.Logger
}

type token struct {
	value     string
	expiresAt time.Time
}

func (t token) valid(now time.Time) bool {
	return t.value != "" && now.Before(t.expiresAt.Add(-tokenExpiryBuffer))
}

// Client issues Graph API requests with application credentials by
// default and delegated credentials where OneNote requires a user
// context.
type Client struct {
	apiBase   string
	loginBase string
	cfg       Config
	client    HTTPDoer
	logger    glog.Logger

	mu             sync.Mutex
	appToken       token
	delegatedToken token
	refreshToken   string

	// Now is injectable for tests.
	Now func() time.Time
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.TenantID) == "" || strings.TrimSpace(cfg.ClientID) == "" {
		return nil, goerrors.New(
			"graph: tenant id and client id are required",
			goerrors.CategoryBadInput,
		).WithTextCode("BRIDGE_BAD_INPUT")
	}
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	loginBase := strings.TrimRight(strings.TrimSpace(cfg.LoginBase), "/")
	if loginBase == "" {
		loginBase = defaultLoginBase
	}
	if strings.TrimSpace(cfg.Scope) == "" {
		cfg.Scope = defaultScope
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
		apiBase:      apiBase,
		loginBase:    loginBase,
		cfg:          cfg,
		client:       client,
		logger:       glog.Ensure(cfg.Logger),
		refreshToken: strings.TrimSpace(cfg.DelegatedRefreshToken),
		Now:          time.Now,
	}, nil
}

// AccessToken returns a valid application token, acquiring one via
// the client-credentials grant when the cached token is stale.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.appToken.valid(now) {
		return c.appToken.value, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {c.cfg.Scope},
	}
	acquired, err := c.requestToken(ctx, form)
	if err != nil {
		return "", err
	}
	c.appToken = acquired
	return acquired.value, nil
}

// DelegatedAccessToken returns a valid delegated token, refreshing it
// from the stored refresh token when stale. The provider may rotate
// the refresh token on each exchange.
func (c *Client) DelegatedAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.delegatedToken.valid(now) {
		return c.delegatedToken.value, nil
	}
	clientID := strings.TrimSpace(c.cfg.DelegatedClientID)
	if clientID == "" || c.refreshToken == "" {
		return "", goerrors.New(
			"graph: delegated client id and refresh token are required",
			goerrors.CategoryAuth,
		).WithTextCode("BRIDGE_UNAUTHORIZED")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"refresh_token": {c.refreshToken},
		"scope":         {"Notes.ReadWrite.All offline_access"},
	}
	acquired, rotated, err := c.requestTokenWithRefresh(ctx, form)
	if err != nil {
		return "", err
	}
	c.delegatedToken = acquired
	if rotated != "" {
		c.refreshToken = rotated
	}
	return acquired.value, nil
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (token, error) {
	acquired, _, err := c.requestTokenWithRefresh(ctx, form)
	return acquired, err
}

func (c *Client) requestTokenWithRefresh(ctx context.Context, form url.Values) (token, string, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginBase, c.cfg.TenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return token{}, "", fmt.Errorf("graph: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return token{}, "", goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: token request failed",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return token{}, "", goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: read token response",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	if resp.StatusCode != http.StatusOK {
		return token{}, "", goerrors.New(
			fmt.Sprintf("graph: token request returned status %d", resp.StatusCode),
			goerrors.CategoryAuth,
		).WithTextCode("BRIDGE_UNAUTHORIZED").WithMetadata(map[string]any{
			"status": resp.StatusCode,
		})
	}

	var wire struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return token{}, "", goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: malformed token response",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	if wire.AccessToken == "" {
		return token{}, "", goerrors.New(
			"graph: token response carried no access token",
			goerrors.CategoryAuth,
		).WithTextCode("BRIDGE_UNAUTHORIZED")
	}
	expiresIn := wire.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	return token{
		value:     wire.AccessToken,
		expiresAt: c.now().Add(time.Duration(expiresIn) * time.Second),
	}, wire.RefreshToken, nil
}

// Request issues an API call with the application token and decodes
// the JSON response.
func (c *Client) Request(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	tokenValue, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	body, _, err := c.doRaw(ctx, method, c.apiBase+path, tokenValue, payload)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// RequestDelegated issues an API call with the delegated token.
func (c *Client) RequestDelegated(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	tokenValue, err := c.DelegatedAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	body, _, err := c.doRaw(ctx, method, c.apiBase+path, tokenValue, payload)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

func (c *Client) doRaw(ctx context.Context, method, endpoint, tokenValue string, payload any) ([]byte, http.Header, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("graph: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("graph: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokenValue)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			fmt.Sprintf("graph: %s %s failed", method, endpoint),
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, nil, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: read response body",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, goerrors.New(
			fmt.Sprintf("graph: %s %s returned status %d", method, endpoint, resp.StatusCode),
			goerrors.CategoryExternal,
		).WithTextCode("BRIDGE_UPSTREAM_FAILED").WithMetadata(map[string]any{
			"status": resp.StatusCode,
			"body":   truncate(string(data), 512),
		})
	}
	return data, resp.Header, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, goerrors.Wrap(
			err, goerrors.CategoryExternal,
			"graph: malformed response body",
		).WithTextCode("BRIDGE_UPSTREAM_FAILED")
	}
	return result, nil
}

func (c *Client) now() time.Time {
	if c != nil && c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
