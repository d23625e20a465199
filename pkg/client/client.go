package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
)

// Client is a Go SDK for the practice session API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-2xx answer from the service
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.Status, e.Code, e.Message)
}

// View is a session record and its controller state
type View struct {
	Session *models.Session `json:"session"`
	State   session.State   `json:"state"`
}

// ListOptions contains options for listing sessions
type ListOptions struct {
	EngineID string
	Status   string
	Limit    int
	Offset   int
}

type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
}

// ListEngines returns the metadata of every registered engine
func (c *Client) ListEngines(ctx context.Context) ([]engine.Info, error) {
	data, err := call[struct {
		Engines []engine.Info `json:"engines"`
	}](ctx, c, http.MethodGet, "/api/v1/engines", nil)
	if err != nil {
		return nil, err
	}
	return data.Engines, nil
}

// ListTopics returns the catalog topics
func (c *Client) ListTopics(ctx context.Context) ([]*models.Topic, error) {
	data, err := call[struct {
		Topics []*models.Topic `json:"topics"`
	}](ctx, c, http.MethodGet, "/api/v1/catalog/topics", nil)
	if err != nil {
		return nil, err
	}
	return data.Topics, nil
}

// ListPresets returns the presets of one topic
func (c *Client) ListPresets(ctx context.Context, topicID string) ([]*models.Preset, error) {
	data, err := call[struct {
		Presets []*models.Preset `json:"presets"`
	}](ctx, c, http.MethodGet, "/api/v1/catalog/topics/"+url.PathEscape(topicID)+"/presets", nil)
	if err != nil {
		return nil, err
	}
	return data.Presets, nil
}

// CreateSession starts a session from an engine and params or from a preset
func (c *Client) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*View, error) {
	return call[*View](ctx, c, http.MethodPost, "/api/v1/sessions", req)
}

// GetSession retrieves a session by ID
func (c *Client) GetSession(ctx context.Context, id string) (*View, error) {
	return call[*View](ctx, c, http.MethodGet, sessionPath(id, ""), nil)
}

// Input writes one value into one cell
func (c *Client) Input(ctx context.Context, id, cellID, value string) (*View, error) {
	req := models.InputRequest{CellID: cellID, Value: value}
	return call[*View](ctx, c, http.MethodPost, sessionPath(id, "/input"), req)
}

// Next advances past a solved step
func (c *Client) Next(ctx context.Context, id string) (*View, error) {
	return call[*View](ctx, c, http.MethodPost, sessionPath(id, "/next"), nil)
}

// Undo reverts the last transition
func (c *Client) Undo(ctx context.Context, id string) (*View, error) {
	return call[*View](ctx, c, http.MethodPost, sessionPath(id, "/undo"), nil)
}

// Reset starts the problem over
func (c *Client) Reset(ctx context.Context, id string) (*View, error) {
	return call[*View](ctx, c, http.MethodPost, sessionPath(id, "/reset"), nil)
}

// Clear blanks every editable cell and keeps the current step
func (c *Client) Clear(ctx context.Context, id string) (*View, error) {
	return call[*View](ctx, c, http.MethodPost, sessionPath(id, "/clear"), nil)
}

// DeleteSession removes a session
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, sessionPath(id, ""), nil)
	return err
}

// ListSessions retrieves stored session records
func (c *Client) ListSessions(ctx context.Context, opts ListOptions) ([]*models.Session, error) {
	q := url.Values{}
	if opts.EngineID != "" {
		q.Set("engine_id", opts.EngineID)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/v1/sessions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	data, err := call[struct {
		Sessions []*models.Session `json:"sessions"`
	}](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return data.Sessions, nil
}

// Attempts returns the attempt events recorded for a session
func (c *Client) Attempts(ctx context.Context, id string, limit int) ([]models.AttemptEvent, error) {
	path := sessionPath(id, "/attempts")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	data, err := call[struct {
		Attempts []models.AttemptEvent `json:"attempts"`
	}](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return data.Attempts, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodGet, "/health", nil)
	return err
}

func sessionPath(id, suffix string) string {
	return "/api/v1/sessions/" + url.PathEscape(id) + suffix
}

// call performs a request and unwraps the response envelope
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response: %w", err)
	}

	var result envelope[T]
	if err := json.Unmarshal(respBody, &result); err != nil {
		if resp.StatusCode >= 400 {
			return zero, &APIError{Status: resp.StatusCode, Code: "http_error", Message: string(respBody)}
		}
		return zero, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success || resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Code: "unknown", Message: http.StatusText(resp.StatusCode)}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return zero, apiErr
	}

	return result.Data, nil
}
