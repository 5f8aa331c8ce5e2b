// Package identity wraps the external identity-verification service. This
// service never verifies identity tokens itself; it trusts the verifier's
// answer and binds the returned subject to the pending authorization code.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
)

// Verification is the verifier's answer for a valid identity token.
type Verification struct {
	SubjectID     string    `json:"subject_id"`
	Scopes        []string  `json:"scopes"`
	ExpiresAt     time.Time `json:"expires_at"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	WalletAddress string    `json:"wallet_address"`
}

// Verifier checks an external identity token and resolves it to a subject.
type Verifier interface {
	Verify(ctx context.Context, identityToken string) (*Verification, error)
}

// HTTPVerifier calls the identity-verification service over HTTP.
type HTTPVerifier struct {
	baseURL   string
	appID     string
	appSecret string
	client    *http.Client
}

var _ Verifier = (*HTTPVerifier)(nil)

// NewHTTPVerifier creates a verifier client for the given service.
func NewHTTPVerifier(baseURL, appID, appSecret string, timeout time.Duration) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL:   baseURL,
		appID:     appID,
		appSecret: appSecret,
		client:    &http.Client{Timeout: timeout},
	}
}

// Verify posts the identity token to the verifier. A 401 from the verifier
// means the token is invalid; any other non-2xx is an upstream failure.
func (v *HTTPVerifier) Verify(ctx context.Context, identityToken string) (*Verification, error) {
	payload, err := json.Marshal(map[string]string{"token": identityToken})
	if err != nil {
		return nil, fmt.Errorf("failed to encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(v.appID, v.appSecret)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity verifier unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.NewAuthError(domain.CodeUnauthorized, "identity token rejected by verifier")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("identity verifier returned %s", resp.Status)
	}

	var verification Verification
	if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
		return nil, fmt.Errorf("failed to decode verifier response: %w", err)
	}
	if verification.SubjectID == "" {
		return nil, fmt.Errorf("verifier response missing subject id")
	}

	return &verification, nil
}
