package domain

import "time"

// OAuthClient is a registered OAuth 2.1 client. Created once at registration
// and immutable afterward. SecretHash is a bcrypt hash; the plaintext secret
// is returned exactly once by the registration endpoint.
type OAuthClient struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	SecretHash   string    `json:"client_secret_hash"`
	Name         string    `json:"name"`
	RedirectURIs []string  `json:"redirect_uris"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRedirectURI reports whether uri is one of the client's registered URIs.
func (c *OAuthClient) HasRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// IsConfidential reports whether the client registered with a secret.
func (c *OAuthClient) IsConfidential() bool {
	return c.SecretHash != ""
}

// AuthorizationCode is a short-lived, single-use code binding a
// client/redirect pair to an eventually verified identity. UserID starts
// empty and is set exactly once after identity verification; a code with an
// empty UserID can never be exchanged.
type AuthorizationCode struct {
	Code                string        `json:"code"`
	ClientID            string        `json:"client_id"`
	RedirectURI         string        `json:"redirect_uri"`
	CodeChallenge       string        `json:"code_challenge,omitempty"`
	CodeChallengeMethod string        `json:"code_challenge_method,omitempty"`
	UserID              string        `json:"user_id"`
	UserData            *VerifiedUser `json:"user_data,omitempty"`
	// IdentityToken is the verified external identity token, carried from
	// the binding step to seed the session opened at exchange.
	IdentityToken string    `json:"identity_token,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IsExpired checks the code's validity window. Expired codes are rejected on
// read; deletion only happens on successful consumption.
func (c *AuthorizationCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsBound reports whether the identity-verification step has completed.
func (c *AuthorizationCode) IsBound() bool {
	return c.UserID != ""
}

// VerifiedUser carries identity attributes captured during the external
// verification step, used to create or refresh the central identity record.
type VerifiedUser struct {
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// OAuthAccessToken is the bearer credential minted at token exchange and
// presented by MCP clients on subsequent API calls. Read-only after creation.
type OAuthAccessToken struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	ClientID  string        `json:"client_id"`
	UserID    string        `json:"user_id"`
	SessionID string        `json:"session_id,omitempty"`
	UserData  *VerifiedUser `json:"user_data,omitempty"`
}

// IsExpired checks the token's validity window.
func (t *OAuthAccessToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
