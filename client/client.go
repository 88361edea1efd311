// Package client is a Go client for the taskboard API. Client wraps
// the HTTP surface; Store keeps a local mirror of projects and tasks
// with explicit refresh points.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"taskboard/internal/model"
	"taskboard/pkg/circuitbreaker"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	token   string

	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
	}
}

// SetToken sets the bearer token attached to every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, which the caller may persist
// between sessions.
func (c *Client) Token() string {
	return c.token
}

// AuthResponse is the body returned by register and login.
type AuthResponse struct {
	User struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Logout discards the local token. The server keeps no session state.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.token = ""
	return err
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) CreateProject(ctx context.Context, title, description string) (*model.Project, error) {
	var out struct {
		Project model.Project `json:"project"`
	}
	err := c.do(ctx, http.MethodPost, "/projects", map[string]string{
		"title":       title,
		"description": description,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *Client) GetProject(ctx context.Context, id int) (*model.Project, error) {
	var out struct {
		Project model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int, title, description string) (*model.Project, error) {
	var out struct {
		Project model.Project `json:"project"`
	}
	err := c.do(ctx, http.MethodPut, "/projects/"+strconv.Itoa(id), map[string]string{
		"title":       title,
		"description": description,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+strconv.Itoa(id), nil, nil)
}

// TaskListOptions are passed through as query parameters.
type TaskListOptions struct {
	Status string
	SortBy string
	Order  string
}

func (c *Client) ListTasks(ctx context.Context, projectID int, opts TaskListOptions) ([]model.Task, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.SortBy != "" {
		q.Set("sortBy", opts.SortBy)
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}

	path := fmt.Sprintf("/projects/%d/tasks", projectID)
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// NewTask carries the fields for task creation; zero values are omitted.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, projectID int, in NewTask) (*model.Task, error) {
	var out struct {
		Task model.Task `json:"task"`
	}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), in, &out)
	if err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (*model.Task, error) {
	var out struct {
		Task model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// TaskPatch updates only the fields that are non-nil.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, id int, patch TaskPatch) (*model.Task, error) {
	var out struct {
		Task model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+strconv.Itoa(id), patch, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+strconv.Itoa(id), nil, nil)
}

// do runs one request under the circuit breaker. Only transport errors
// and 5xx responses count as breaker failures; 4xx responses are the
// server doing its job.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var apiErr *APIError
	err = c.breaker.Execute(func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			var errBody struct {
				Error string `json:"error"`
			}
			_ = json.NewDecoder(resp.Body).Decode(&errBody)
			failure := &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
			if resp.StatusCode >= 500 {
				return failure
			}
			apiErr = failure
			return nil
		}

		if out != nil {
			return json.NewDecoder(resp.Body).Decode(out)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if apiErr != nil {
		return apiErr
	}
	return nil
}
