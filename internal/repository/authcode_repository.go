package repository

import (
	"context"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// authCodeRepository implements AuthCodeRepository interface
type authCodeRepository struct {
	store store.Store
}

// NewAuthCodeRepository creates a new authorization code repository
func NewAuthCodeRepository(st store.Store) AuthCodeRepository {
	return &authCodeRepository{store: st}
}

// Save persists an authorization code for its validity window. Binding a
// user rewrites the record with the same expiry.
func (r *authCodeRepository) Save(ctx context.Context, code *domain.AuthorizationCode, ttl time.Duration) error {
	return setRecord(ctx, r.store, authCodeKey(code.Code), code, ttl)
}

// Get retrieves an authorization code. Expiry is enforced by the caller, not
// here: an expired-but-present code is still returned so the broker can
// reject it with the precise reason.
func (r *authCodeRepository) Get(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	return getRecord[domain.AuthorizationCode](ctx, r.store, authCodeKey(code))
}

// Delete consumes a code. Single use is enforced by deletion: a second
// exchange finds nothing.
func (r *authCodeRepository) Delete(ctx context.Context, code string) error {
	return r.store.Delete(ctx, authCodeKey(code))
}
