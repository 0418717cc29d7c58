// Package client is the HTTP implementation of the training monitor backend.
//
// [Client] talks to the /api/v1 endpoints of cmd/server and satisfies
// monitor.Backend. Non-2xx responses are returned as *[APIError] carrying the
// status code and the server's error message.
package client

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

	"lexdesk/training-monitor/internal/domain"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const apiPrefix = "/api/v1"

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// NewClient creates a client for baseURL (scheme and host, no trailing path).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetAuthToken sets the bearer token sent with every request.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// LoginResult is the session returned by Login.
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		ID        string      `json:"id"`
		FullName  string      `json:"fullName"`
		FirstName string      `json:"firstName"`
		LastName  string      `json:"lastName"`
		Email     string      `json:"email"`
		Role      domain.Role `json:"role"`
	} `json:"user"`
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	c.SetAuthToken(result.Token)
	return &result, nil
}

// ListAssignedTrainingDocuments fetches every training assignment visible to the attorney.
func (c *Client) ListAssignedTrainingDocuments(ctx context.Context) ([]domain.TrainingAssignment, error) {
	var list []domain.TrainingAssignment
	if err := c.do(ctx, http.MethodGet, "/attorney/training-documents", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.TrainingAssignment{}
	}
	return list, nil
}

type postBody struct {
	Body string `json:"body"`
}

// PostComment adds a comment to an item's discussion.
func (c *Client) PostComment(ctx context.Context, assignmentID string, kind domain.ItemKind, itemID, body string) error {
	return c.do(ctx, http.MethodPost, commentsPath(assignmentID, kind, itemID), postBody{Body: body}, nil)
}

// PostReply adds a reply to a comment.
func (c *Client) PostReply(ctx context.Context, assignmentID string, kind domain.ItemKind, itemID, commentID, body string) error {
	path := commentsPath(assignmentID, kind, itemID) + "/" + url.PathEscape(commentID) + "/replies"
	return c.do(ctx, http.MethodPost, path, postBody{Body: body}, nil)
}

// ResolveFileAccessURL exchanges a stored file reference for a short-lived URL.
func (c *Client) ResolveFileAccessURL(ctx context.Context, fileRef string) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/files/access-url", map[string]string{"fileRef": fileRef}, &result); err != nil {
		return "", err
	}
	if result.URL == "" {
		return "", fmt.Errorf("empty access url for %q", fileRef)
	}
	return result.URL, nil
}

func commentsPath(assignmentID string, kind domain.ItemKind, itemID string) string {
	return "/training-documents/" + url.PathEscape(assignmentID) + "/" + kind.PathSegment() + "/" + url.PathEscape(itemID) + "/comments"
}

// do performs a JSON request against the API prefix and decodes the response into target.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

// decodeResponse decodes the JSON response into the target struct
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
