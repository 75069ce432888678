package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dmrpanel/dmrctl/internal/api/models"
	"github.com/pkg/errors"
)

const (
	StatusPath  = "/api/status"
	RestartPath = "/api/restart"
	ConfigPath  = "/api/config"
	ResetPath   = "/api/reset"
	BackupPath  = "/api/backup"
)

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// Logger receives request and response traces.
type Logger interface {
	Debug(msg string, args ...interface{})
}

// Client talks to the DMR engine admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     Logger
}

// NewClient creates a client for the engine at baseURL. A nil httpClient
// uses a plain http.Client; no timeout is applied, callers cancel through
// the context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetLogger routes request traces to logger. Without one they are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// Status fetches GET /api/status. The body must be a JSON object with a
// non-null services key; nothing else in it is checked.
func (c *Client) Status(ctx context.Context) (models.StatusResponse, error) {
	body, err := c.do(ctx, http.MethodGet, StatusPath, nil)
	if err != nil {
		return nil, err
	}

	var status models.StatusResponse
	if err := decode(body, StatusPath, &status); err != nil {
		return nil, err
	}
	if !status.HasServices() {
		return nil, errors.Wrapf(ErrMalformedResponse, "%s: missing services", StatusPath)
	}
	return status, nil
}

// Restart triggers POST /api/restart with an empty body.
func (c *Client) Restart(ctx context.Context) (*models.Ret, error) {
	return c.post(ctx, RestartPath, nil)
}

// UpdateConfig posts the full engine configuration to /api/config.
func (c *Client) UpdateConfig(ctx context.Context, cfg models.EngineConfig) (*models.Ret, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal engine config")
	}
	return c.post(ctx, ConfigPath, payload)
}

// Reset asks the engine to restore its default configuration.
func (c *Client) Reset(ctx context.Context) (*models.Ret, error) {
	return c.post(ctx, ResetPath, nil)
}

// Backup downloads the engine's config.ini. The raw bytes are returned
// together with the parsed [dmr] section.
func (c *Client) Backup(ctx context.Context) ([]byte, *models.EngineConfig, error) {
	body, err := c.do(ctx, http.MethodGet, BackupPath, nil)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := ParseBackup(body)
	if err != nil {
		return nil, nil, err
	}
	return body, cfg, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (*models.Ret, error) {
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	var ret models.Ret
	if err := decode(body, path, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrapf(err, "create request %s %s", method, path)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.debug("engine request", "method", method, "url", req.URL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read response %s %s", method, path)
	}
	c.debug("engine response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := truncate(strings.TrimSpace(string(body)), maxErrorBody)
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: text}
	}
	return body, nil
}

func decode(body []byte, path string, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "%s: %v", path, err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
