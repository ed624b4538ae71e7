// Package client is the Go client for the scholarly concern API. It
// pairs a typed HTTP client with the two synchronization pieces the
// mobile app relies on: RetryWriter for state-changing calls and Poller
// for change detection without a push channel.
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
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client, e.g. to set
// timeouts or point at a test server transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer credential used on every request.
func (c *Client) SetToken(token string) { c.token = token }

// Concern mirrors the server record; timestamps are ISO-8601.
type Concern struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	AdminResponse string    `json:"admin_response"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	OwnerName     string    `json:"owner_name,omitempty"`
}

type Notification struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	ReferenceID uint      `json:"reference_id"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateConcernRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// UpdateConcernRequest serves both status-only updates and
// response+status updates; a nil AdminResponse leaves the stored
// response untouched.
type UpdateConcernRequest struct {
	Status        string  `json:"status,omitempty"`
	AdminResponse *string `json:"admin_response,omitempty"`
}

// ListQuery narrows and orders a concern listing server-side.
type ListQuery struct {
	Status string
	Search string
	Sort   string // date | status | category
	Order  string // asc | desc
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	return v
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a student account and installs the returned access
// token on the client.
func (c *Client) Register(ctx context.Context, fullName, email, password string) (*TokenPair, error) {
	body := map[string]string{"full_name": fullName, "email": email, "password": password}
	var out TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", nil, body, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

// Login exchanges credentials for a token pair and installs the access
// token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	var out TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

type concernList struct {
	Concerns []Concern `json:"concerns"`
	Total    int       `json:"total"`
}

// ListConcerns fetches the caller's own concerns.
func (c *Client) ListConcerns(ctx context.Context, q ListQuery) ([]Concern, error) {
	var out concernList
	if err := c.do(ctx, http.MethodGet, "/api/v1/concerns", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Concerns, nil
}

// ListAllConcerns fetches every concern; requires an admin credential.
func (c *Client) ListAllConcerns(ctx context.Context, q ListQuery) ([]Concern, error) {
	var out concernList
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/concerns", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Concerns, nil
}

func (c *Client) CreateConcern(ctx context.Context, req CreateConcernRequest) (*Concern, error) {
	var out Concern
	if err := c.do(ctx, http.MethodPost, "/api/v1/concerns", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateConcern(ctx context.Context, id uint, req UpdateConcernRequest) (*Concern, error) {
	var out Concern
	path := "/api/v1/concerns/" + strconv.FormatUint(uint64(id), 10)
	if err := c.do(ctx, http.MethodPut, path, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkConcernRead(ctx context.Context, id uint) error {
	path := "/api/v1/concerns/" + strconv.FormatUint(uint64(id), 10) + "/read"
	return c.do(ctx, http.MethodPatch, path, nil, nil, nil)
}

func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/notifications", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// UnreadCount returns the badge value for the notification tab.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uint) error {
	path := "/api/v1/me/notifications/" + strconv.FormatUint(uint64(id), 10) + "/read"
	return c.do(ctx, http.MethodPut, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// APIError carries the HTTP status and the server-supplied message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}
