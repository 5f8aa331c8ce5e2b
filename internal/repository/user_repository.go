package repository

import (
	"context"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// userRepository implements UserRepository interface
type userRepository struct {
	store store.Store
}

// NewUserRepository creates a new identity record repository
func NewUserRepository(st store.Store) UserRepository {
	return &userRepository{store: st}
}

// Save persists an identity record. Identities never expire and are never
// deleted by this service.
func (r *userRepository) Save(ctx context.Context, user *domain.LuxBridgeUser) error {
	return setRecord(ctx, r.store, identityKey(user.UserID), user, store.NoExpiry)
}

// Get retrieves an identity record
func (r *userRepository) Get(ctx context.Context, userID string) (*domain.LuxBridgeUser, error) {
	return getRecord[domain.LuxBridgeUser](ctx, r.store, identityKey(userID))
}
