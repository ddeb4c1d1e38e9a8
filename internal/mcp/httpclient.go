package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymflow/internal/attendance"
	"github.com/claude/gymflow/internal/journal"
	"github.com/claude/gymflow/internal/models"
)

// HTTPClient implements DataSource by calling the gymflow REST API.
// Used by the stdio MCP binary when the stores live on a remote server.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// may be empty when the server runs without auth.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListPrograms(ctx context.Context) ([]models.Program, error) {
	var programs []models.Program
	if err := c.get(ctx, "/api/v1/programs", nil, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (c *HTTPClient) GetProgram(ctx context.Context, id string) (models.Program, error) {
	var p models.Program
	if err := c.get(ctx, "/api/v1/programs/"+url.PathEscape(id), nil, &p); err != nil {
		return models.Program{}, err
	}
	return p, nil
}

func (c *HTTPClient) AttendanceEntries(ctx context.Context) ([]models.AttendanceEntry, error) {
	var entries []models.AttendanceEntry
	if err := c.get(ctx, "/api/v1/attendance", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) AttendanceSummary(ctx context.Context) (attendance.Summary, error) {
	var s attendance.Summary
	if err := c.get(ctx, "/api/v1/attendance/summary", nil, &s); err != nil {
		return attendance.Summary{}, err
	}
	return s, nil
}

func (c *HTTPClient) History(ctx context.Context, programID string, limit int) ([]journal.Entry, error) {
	params := url.Values{}
	if programID != "" {
		params.Set("program", programID)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var entries []journal.Entry
	if err := c.get(ctx, "/api/v1/history", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
