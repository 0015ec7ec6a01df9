// Package client provides a typed Go SDK for the Corral REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the top-level Corral API client. Record services are scoped to
// the domain that owns the configured API key; Domains and Audit.Purge
// require the server's admin key instead.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	Projects   *RecordService[Project, ProjectRequest]
	Contacts   *RecordService[Contact, ContactRequest]
	Categories *RecordService[Category, CategoryRequest]
	Tasks      *RecordService[Task, TaskRequest]
	Domains    *DomainService
	Audit      *AuditService
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key for authentication. Use a domain key for
// record operations or the admin key for domain management.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Corral client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	c.Projects = &RecordService[Project, ProjectRequest]{c: c, path: "/api/v1/projects"}
	c.Contacts = &RecordService[Contact, ContactRequest]{c: c, path: "/api/v1/contacts"}
	c.Categories = &RecordService[Category, CategoryRequest]{c: c, path: "/api/v1/categories"}
	c.Tasks = &RecordService[Task, TaskRequest]{c: c, path: "/api/v1/tasks"}
	c.Domains = &DomainService{c: c}
	c.Audit = &AuditService{c: c}
	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/api/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns per-entity record counts for the active domain.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.get(ctx, "/api/v1/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do executes an HTTP request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	_, err := c.doHeaders(ctx, method, path, body, result)
	return err
}

// doHeaders is do plus the response headers, for endpoints that report
// totals and cursors out of band.
func (c *Client) doHeaders(ctx context.Context, method, path string, body any, result any) (http.Header, error) {
	respBody, header, err := c.doBytes(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return header, nil
}

// doBytes executes an HTTP request and returns the raw response body and
// headers. Statuses >= 400 come back as *APIError.
func (c *Client) doBytes(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	u := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, nil, parseAPIError(resp.StatusCode, respBody)
	}
	return respBody, resp.Header, nil
}

// get is a convenience wrapper for GET requests with query parameters.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// getHeaders is get plus the response headers.
func (c *Client) getHeaders(ctx context.Context, path string, params url.Values, result any) (http.Header, error) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.doHeaders(ctx, http.MethodGet, path, nil, result)
}

// post is a convenience wrapper for POST requests.
func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// postHeaders is post plus the response headers.
func (c *Client) postHeaders(ctx context.Context, path string, body any, result any) (http.Header, error) {
	return c.doHeaders(ctx, http.MethodPost, path, body, result)
}

// put is a convenience wrapper for PUT requests.
func (c *Client) put(ctx context.Context, path string, body any, result any) (http.Header, error) {
	return c.doHeaders(ctx, http.MethodPut, path, body, result)
}

// del is a convenience wrapper for DELETE requests.
func (c *Client) del(ctx context.Context, path string, params url.Values, result any) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodDelete, path, nil, result)
}
