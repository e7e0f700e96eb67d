// Package client is the HTTP client for the bankd API. Every authenticated
// request carries the bearer token from the token store; a 401 on any such
// request clears the token and notifies the session manager, so a revoked
// session is torn down no matter which call discovers it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bankd-dev/bankd/internal/cli/auth"
)

// Client represents an HTTP client for the bankd API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenStore
	onAuthLost func()
}

// New creates a new API client using the given token store
func New(baseURL string, tokens auth.TokenStore) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetAuthFailureHandler registers the hook invoked after a 401 forces the
// token to be cleared. The session manager uses it to reset its state.
func (c *Client) SetAuthFailureHandler(fn func()) {
	c.onAuthLost = fn
}

// loginRequest is the credential submission body
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the issued bearer token
type loginResponse struct {
	JWT string `json:"jwt"`
}

// Login submits credentials and returns the issued bearer token. It does
// not store the token; the session manager owns that write.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/req/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &LoginError{Message: apiMessage(respBody)}
	}

	var loginResp loginResponse
	if err := json.Unmarshal(respBody, &loginResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if loginResp.JWT == "" {
		return "", &LoginError{Message: "server returned no token"}
	}

	return loginResp.JWT, nil
}

// Signup registers a new customer and returns the issued bearer token
func (c *Client) Signup(ctx context.Context, username, password, email string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/req/signup", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return "", &LoginError{Message: apiMessage(respBody)}
	}

	var loginResp loginResponse
	if err := json.Unmarshal(respBody, &loginResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return loginResp.JWT, nil
}

// Logout notifies the server that the session ended. Best-effort: any
// failure is ignored and the auth-failure hook never fires, because the
// caller is discarding the session regardless.
func (c *Client) Logout(ctx context.Context) {
	token, err := c.tokens.Load()
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/logout", nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// do issues an authenticated request. A 401 clears the stored token, fires
// the auth-failure hook and returns ErrAuthorizationLost; other non-2xx
// statuses become APIError.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	token, err := c.tokens.Load()
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.tokens.Clear()
		if c.onAuthLost != nil {
			c.onAuthLost()
		}
		return fmt.Errorf("%w: %s", ErrAuthorizationLost, apiMessage(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
