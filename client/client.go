// Package client is the Go counterpart of the browser frontend: an HTTP
// client for the task API plus a board controller that mirrors the UI's
// optimistic-free update rules.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"kanbanflow/domain"
)

const (
	defaultTimeout  = 10 * time.Second
	responseMaxSize = 4 << 20
)

// APIError carries the status and decoded body of a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api: %d %s (field %s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to the task API.
type Client struct {
	base string
	http *http.Client
}

// New builds a client for the given base URL, e.g. "http://localhost:5000".
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}
}

// List fetches all tasks, optionally scoped to one board.
func (c *Client) List(ctx context.Context, boardID string) ([]domain.Task, error) {
	endpoint := c.base + "/api/tasks"
	if boardID != "" {
		endpoint += "?board=" + url.QueryEscape(boardID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if err := c.do(req, http.StatusOK, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create posts a new task and returns it as stored, server defaults
// applied.
func (c *Client) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, c.base+"/api/tasks", t)
	if err != nil {
		return domain.Task{}, err
	}
	var created domain.Task
	if err := c.do(req, http.StatusCreated, &created); err != nil {
		return domain.Task{}, err
	}
	return created, nil
}

// Update applies a partial update and returns the task after the patch.
func (c *Client) Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error) {
	req, err := c.jsonRequest(ctx, http.MethodPut, c.base+"/api/tasks/"+url.PathEscape(id), p)
	if err != nil {
		return domain.Task{}, err
	}
	var updated domain.Task
	if err := c.do(req, http.StatusOK, &updated); err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/api/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusNoContent, nil)
}

// Health reports whether the backend answers its health probe.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	data, err := sonic.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, responseMaxSize))
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return sonic.Unmarshal(data, out)
}

func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Error  string `json:"error"`
		Field  string `json:"field"`
		Reason string `json:"reason"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return APIError{Status: status, Message: http.StatusText(status)}
	}
	message := payload.Error
	if payload.Reason != "" {
		message += ": " + payload.Reason
	}
	return APIError{Status: status, Message: message, Field: payload.Field}
}
