// Package upstream is the gateway's view of the external auth service. The
// service is consumed only through this contract: the gateway forwards
// validated, authenticated requests and relays responses, it never owns the
// durable user record. Network failures are mapped to
// errors.ErrUpstreamUnavailable so no raw connection detail leaks to clients.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
	"github.com/jrsteele09/go-edge-gateway/users"
)

// Client talks to the external auth service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the auth service at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Credentials carries a login attempt to the auth service
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries a sanitized signup to the auth service
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	TeamSize  string `json:"team_size,omitempty"`
}

// ProfileUpdate carries sanitized profile changes to the auth service
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
}

// PasswordChange carries a password rotation to the auth service
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResult is the auth service's answer to a successful login or signup
type AuthResult struct {
	User         users.Snapshot `json:"user"`
	BackendToken string         `json:"token"`
}

// Authenticate verifies credentials with the auth service
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authCall(ctx, http.MethodPost, "/v1/auth/login", "", creds)
}

// Register creates a new account with the auth service
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	return c.authCall(ctx, http.MethodPost, "/v1/auth/register", "", reg)
}

// UpdateProfile applies profile changes on behalf of an authenticated user
func (c *Client) UpdateProfile(ctx context.Context, bearerToken string, update ProfileUpdate) (*users.Snapshot, error) {
	result, err := c.authCall(ctx, http.MethodPut, "/v1/account/profile", bearerToken, update)
	if err != nil {
		return nil, err
	}
	return &result.User, nil
}

// ChangePassword rotates the user's password at the auth service
func (c *Client) ChangePassword(ctx context.Context, bearerToken string, change PasswordChange) error {
	_, err := c.authCall(ctx, http.MethodPut, "/v1/account/password", bearerToken, change)
	return err
}

func (c *Client) authCall(ctx context.Context, method, path, bearerToken string, payload interface{}) (*AuthResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "[upstream authCall] marshal %s", path)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "[upstream authCall] build request %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "%s %s: status %d", method, path, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, errors.Wrapf(errors.ErrUpstreamRejected, "%s %s: status %d", method, path, resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNoContent {
		return &AuthResult{}, nil
	}

	result := &AuthResult{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(result); err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "%s %s: decode response: %v", method, path, err)
	}
	return result, nil
}

// maxResponseBytes bounds how much of an upstream response is buffered
const maxResponseBytes = 1 << 20
