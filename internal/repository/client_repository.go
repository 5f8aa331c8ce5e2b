package repository

import (
	"context"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// clientRepository implements ClientRepository interface
type clientRepository struct {
	store store.Store
}

// NewClientRepository creates a new OAuth client repository
func NewClientRepository(st store.Store) ClientRepository {
	return &clientRepository{store: st}
}

// Create persists a registered client. Clients never expire.
func (r *clientRepository) Create(ctx context.Context, client *domain.OAuthClient) error {
	return setRecord(ctx, r.store, clientKey(client.ClientID), client, store.NoExpiry)
}

// GetByClientID retrieves a client by its client_id
func (r *clientRepository) GetByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error) {
	return getRecord[domain.OAuthClient](ctx, r.store, clientKey(clientID))
}
