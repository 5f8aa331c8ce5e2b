package repository

import (
	"context"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
)

// ClientRepository defines methods for OAuth client records
type ClientRepository interface {
	Create(ctx context.Context, client *domain.OAuthClient) error
	GetByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error)
}

// AuthCodeRepository defines methods for authorization code records
type AuthCodeRepository interface {
	Save(ctx context.Context, code *domain.AuthorizationCode, ttl time.Duration) error
	Get(ctx context.Context, code string) (*domain.AuthorizationCode, error)
	Delete(ctx context.Context, code string) error
}

// TokenRepository defines methods for OAuth access token records
type TokenRepository interface {
	Save(ctx context.Context, token *domain.OAuthAccessToken, ttl time.Duration) error
	Get(ctx context.Context, token string) (*domain.OAuthAccessToken, error)
}

// SessionRepository defines methods for session records and the per-identity
// session index
type SessionRepository interface {
	Save(ctx context.Context, session *domain.AuthSession, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*domain.AuthSession, error)
	Delete(ctx context.Context, sessionID string) error
	TTL(ctx context.Context, sessionID string) (time.Duration, error)

	GetIndex(ctx context.Context, identityID string) ([]string, error)
	SaveIndex(ctx context.Context, identityID string, sessionIDs []string, ttl time.Duration) error

	SessionKeys(ctx context.Context) ([]string, error)
	GetByKey(ctx context.Context, key string) (*domain.AuthSession, error)
	DeleteKey(ctx context.Context, key string) error
}

// PlatformLinkRepository defines methods for platform link records
type PlatformLinkRepository interface {
	Save(ctx context.Context, link *domain.PlatformLink, ttl time.Duration) error
	Get(ctx context.Context, identityID string, platform domain.Platform) (*domain.PlatformLink, error)
	Delete(ctx context.Context, identityID string, platform domain.Platform) error
}

// UserRepository defines methods for central identity records
type UserRepository interface {
	Save(ctx context.Context, user *domain.LuxBridgeUser) error
	Get(ctx context.Context, userID string) (*domain.LuxBridgeUser, error)
}
