package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/linkforge/shortlink/internal/domain"
)

// Client represents an HTTP client for the short link API
type Client struct {
	serverURL  string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client. The token may be empty for the
// register and login calls.
func NewClient(serverURL, token string) *Client {
	return &Client{
		serverURL: serverURL,
		token:     token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListLinksResult is one page of links as returned by the API
type ListLinksResult struct {
	Links      []domain.LinkResponse `json:"links"`
	TotalCount int                   `json:"total_count"`
	Pagination domain.Pagination     `json:"pagination"`
}

type apiMessage struct {
	Message string `json:"message"`
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, http.StatusCreated, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	var token domain.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, http.StatusOK, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// CreateLink creates a short link
func (c *Client) CreateLink(ctx context.Context, req domain.CreateLinkRequest) (*domain.LinkResponse, error) {
	var link domain.LinkResponse
	if err := c.do(ctx, http.MethodPost, "/urls", req, http.StatusCreated, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListLinks retrieves one page of links
func (c *Client) ListLinks(ctx context.Context, page, limit int) (*ListLinksResult, error) {
	path := "/urls?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)

	var result ListLinksResult
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LinkStats retrieves the analytics for a short link
func (c *Client) LinkStats(ctx context.Context, shortKey string) (*domain.LinkStats, error) {
	var stats domain.LinkStats
	if err := c.do(ctx, http.MethodGet, "/urls/"+shortKey+"/stats", nil, http.StatusOK, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdateLink applies a metadata update to a short link
func (c *Client) UpdateLink(ctx context.Context, shortKey string, req domain.UpdateLinkRequest) (*domain.LinkResponse, error) {
	var link domain.LinkResponse
	if err := c.do(ctx, http.MethodPut, "/urls/"+shortKey, req, http.StatusOK, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteLink removes a short link
func (c *Client) DeleteLink(ctx context.Context, shortKey string) error {
	return c.do(ctx, http.MethodDelete, "/urls/"+shortKey, nil, http.StatusOK, nil)
}

// DashboardStats retrieves the aggregate dashboard view
func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, http.StatusOK, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var msg apiMessage
		if decodeErr := json.NewDecoder(resp.Body).Decode(&msg); decodeErr == nil && msg.Message != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, msg.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
