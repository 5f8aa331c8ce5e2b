package dto

// RegisterClientRequest represents a dynamic client registration request.
// Public clients get no secret and authenticate with PKCE instead.
type RegisterClientRequest struct {
	ClientName   string   `json:"client_name" binding:"required"`
	RedirectURIs []string `json:"redirect_uris" binding:"required"`
	Public       bool     `json:"public"`
}

// RegisterClientResponse carries the one-time plaintext client secret
type RegisterClientResponse struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret,omitempty"`
	ClientName   string   `json:"client_name"`
	RedirectURIs []string `json:"redirect_uris"`
}

// StoreCodeRequest opens a pending authorization code
type StoreCodeRequest struct {
	Code                string `json:"code" binding:"required"`
	ClientID            string `json:"client_id" binding:"required"`
	RedirectURI         string `json:"redirect_uri" binding:"required"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
}

// CompleteAuthRequest binds a verified identity to a pending code
type CompleteAuthRequest struct {
	Code          string `json:"code" binding:"required"`
	IdentityToken string `json:"identity_token" binding:"required"`
}

// StoreCodeResponse acknowledges a pending code
type StoreCodeResponse struct {
	Success bool `json:"success"`
}

// CompleteAuthResponse acknowledges a bound code
type CompleteAuthResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	AuthCode string `json:"auth_code"`
}

// VerifyCodeRequest probes a pending code
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyCodeResponse reports whether a pending code exists and is bound
type VerifyCodeResponse struct {
	Success   bool           `json:"success"`
	HasUserID bool           `json:"hasUserId"`
	AuthCode  AuthCodeStatus `json:"authCode"`
}

// AuthCodeStatus is the probe view of a pending code
type AuthCodeStatus struct {
	Code      string `json:"code"`
	ClientID  string `json:"clientId"`
	ExpiresAt string `json:"expiresAt"`
	HasUser   bool   `json:"hasUser"`
}

// TokenResponse represents a successful token exchange
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// LinkPlatformRequest carries platform credentials for linking
type LinkPlatformRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

// LinkCompleteResponse acknowledges a finished platform link
type LinkCompleteResponse struct {
	Success      bool   `json:"success"`
	Platform     string `json:"platform"`
	PlatformName string `json:"platformName"`
	LinkedAt     string `json:"linkedAt"`
	Message      string `json:"message"`
}

// PlatformLinkResponse represents a stored platform link; the platform
// bearer token itself is never exposed
type PlatformLinkResponse struct {
	Platform       string  `json:"platform"`
	PlatformUserID string  `json:"platform_user_id"`
	Email          string  `json:"email"`
	Name           string  `json:"name,omitempty"`
	Status         string  `json:"status"`
	LinkedAt       string  `json:"linked_at"`
	LastUsedAt     string  `json:"last_used_at"`
	TokenExpiry    *string `json:"token_expiry,omitempty"`
}

// ProxyCallRequest asks the broker to call a platform API on the caller's
// behalf
type ProxyCallRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Endpoint  string `json:"endpoint" binding:"required"`
	Method    string `json:"method"`
	Body      string `json:"body,omitempty"`
}

// SweepResponse reports a finished session sweep
type SweepResponse struct {
	Swept int `json:"swept"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
