package repository

import (
	"context"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	store store.Store
}

// NewTokenRepository creates a new OAuth access token repository
func NewTokenRepository(st store.Store) TokenRepository {
	return &tokenRepository{store: st}
}

// Save persists a minted access token record for its lifetime. Records are
// read-only after creation.
func (r *tokenRepository) Save(ctx context.Context, token *domain.OAuthAccessToken, ttl time.Duration) error {
	return setRecord(ctx, r.store, oauthTokenKey(token.Token), token, ttl)
}

// Get retrieves an access token record by the token string
func (r *tokenRepository) Get(ctx context.Context, token string) (*domain.OAuthAccessToken, error) {
	return getRecord[domain.OAuthAccessToken](ctx, r.store, oauthTokenKey(token))
}
