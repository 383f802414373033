package certsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the certvault service. It provides access
// to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Register creates a new account. The first account registered on a
// fresh deployment becomes the admin.
func (c *SDKClient) Register(ctx context.Context, email, fullName, password string) (*UserResponse, error) {
	var user UserResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:    email,
		FullName: fullName,
		Password: password,
	}, &user, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an authenticated Session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var token TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &token, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return newSession(c, &token), nil
}

// NewSessionFromToken creates a Session from a token obtained
// elsewhere, for example one stored from an earlier login.
func (c *SDKClient) NewSessionFromToken(accessToken string, expiresIn int) *Session {
	return &Session{
		client:      c,
		accessToken: accessToken,
		expiresAt:   time.Now().Add(time.Duration(expiresIn)*time.Second - expiryBuffer),
	}
}

// Validate checks a certificate hash against the chain. No account is
// needed. An unknown hash yields Valid=false, not an error.
func (c *SDKClient) Validate(ctx context.Context, ipfsHash string) (*ValidationResponse, error) {
	var report ValidationResponse
	path := "/v1/validate/" + url.PathEscape(ipfsHash)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}

// Livez checks process liveness.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// Readyz checks the service and its dependencies. A degraded service
// returns the health payload alongside a typed 503 error, so callers
// can see which check failed.
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.send(ctx, http.MethodGet, "/readyz", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &health, &APIError{
			StatusCode:  resp.StatusCode,
			Code:        "not_ready",
			Description: "service reported status " + health.Status,
		}
	}
	return &health, nil
}
