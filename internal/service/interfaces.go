package service

import (
	"context"
	"io"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/platform"
)

// RegisteredClient is the one-time registration answer; the plaintext secret
// is never retrievable again.
type RegisteredClient struct {
	ClientID     string
	ClientSecret string
	Name         string
	RedirectURIs []string
}

// ExchangeRequest carries the token endpoint's form fields.
type ExchangeRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	CodeVerifier string
}

// IssuedToken is a successful token exchange.
type IssuedToken struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

// OAuthService bundles the client registry and the authorization code broker
type OAuthService interface {
	RegisterClient(ctx context.Context, name string, redirectURIs []string, public bool) (*RegisteredClient, error)
	StoreCode(ctx context.Context, code, clientID, redirectURI, codeChallenge, codeChallengeMethod string) error
	CompleteAuthorization(ctx context.Context, code, identityToken string) error
	PeekCode(ctx context.Context, code string) (*domain.AuthorizationCode, error)
	Exchange(ctx context.Context, req *ExchangeRequest) (*IssuedToken, error)
	Authenticate(ctx context.Context, tokenString string) (*domain.OAuthAccessToken, error)
}

// SessionService owns the session lifecycle and the per-identity index
type SessionService interface {
	Create(ctx context.Context, identityID, externalIdentityToken string) (string, error)
	Get(ctx context.Context, sessionID string) (*domain.AuthSession, error)
	Extend(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
	SetPlatformLink(ctx context.Context, sessionID string, p domain.Platform, link *domain.PlatformLink) error
	RemovePlatformLink(ctx context.Context, sessionID string, p domain.Platform) error
	ListLiveSessions(ctx context.Context, identityID string) ([]string, error)
	ConnectedPlatforms(ctx context.Context, identityID, sessionID string) (map[domain.Platform]*domain.PlatformLink, error)
	MostRecentLiveSession(ctx context.Context, identityID string) (*domain.AuthSession, error)
	SweepExpired(ctx context.Context) (int, error)
}

// PlatformService owns platform links: validation, storage, health
type PlatformService interface {
	ValidateCredentials(ctx context.Context, p domain.Platform, email, password string) (*platform.LoginResult, error)
	LinkPlatform(ctx context.Context, sessionID string, p domain.Platform, email, password string) (*domain.PlatformLink, error)
	GetLink(ctx context.Context, identityID string, p domain.Platform) (*domain.PlatformLink, error)
	DeleteLink(ctx context.Context, identityID string, p domain.Platform) error
	TouchLink(ctx context.Context, identityID string, p domain.Platform) error
	ListLinks(ctx context.Context, identityID string) ([]*domain.PlatformLink, error)
	ValidateAll(ctx context.Context, identityID string) error
}

// ProxyService forwards authenticated calls to downstream platforms
type ProxyService interface {
	Call(ctx context.Context, sessionID string, p domain.Platform, endpoint, method string, body io.Reader) ([]byte, error)
}
