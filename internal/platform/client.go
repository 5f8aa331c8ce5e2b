// Package platform talks to the downstream asset platform APIs: credential
// validation at link time, identity checks during bulk re-validation, and
// raw authenticated calls for the proxy.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
)

// ErrTokenRejected is returned when a platform answers 401 to a stored
// bearer token. Callers use it to tell credential expiry apart from other
// failures.
var ErrTokenRejected = errors.New("platform rejected bearer token")

// LoginResult is a successful downstream login.
type LoginResult struct {
	PlatformUserID string     `json:"user_id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	AccessToken    string     `json:"access_token"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// Client issues HTTP calls against the platform APIs rooted at a single base
// URL; per-platform endpoints hang off {base}/api/{platform}.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a platform API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Login validates user credentials against a platform's own login endpoint.
// 401 maps to invalid_credentials, any other non-2xx to
// authentication_failed; network failures surface verbatim.
func (c *Client) Login(ctx context.Context, platform domain.Platform, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	url := fmt.Sprintf("%s/api/%s/auth/login", c.baseURL, platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.NewAuthError(domain.CodeInvalidCredentials, "platform %s rejected credentials", platform)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, domain.NewAuthError(domain.CodeAuthenticationFailed, "platform %s login returned %s", platform, resp.Status)
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode %s login response: %w", platform, err)
	}
	if result.PlatformUserID == "" || result.AccessToken == "" {
		return nil, fmt.Errorf("unexpected %s login response shape", platform)
	}

	return &result, nil
}

// CheckIdentity probes a platform's identity endpoint with a stored bearer
// token. Returns ErrTokenRejected on 401.
func (c *Client) CheckIdentity(ctx context.Context, platform domain.Platform, bearerToken string) error {
	url := fmt.Sprintf("%s/api/%s/auth/me", c.baseURL, platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrTokenRejected
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("platform %s identity check returned %s", platform, resp.Status)
	}
	return nil
}

// Call issues an authenticated request against a platform endpoint on behalf
// of the proxy. It returns the status and body; err is non-nil only for
// transport failures.
func (c *Client) Call(ctx context.Context, platform domain.Platform, endpoint, method string, body io.Reader, bearerToken string) (int, []byte, string, error) {
	if method == "" {
		method = http.MethodGet
	}

	url := fmt.Sprintf("%s/api/%s%s", c.baseURL, platform, endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to build platform request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to read platform response: %w", err)
	}

	return resp.StatusCode, respBody, resp.Status, nil
}
