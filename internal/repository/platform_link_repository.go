package repository

import (
	"context"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// platformLinkRepository implements PlatformLinkRepository interface
type platformLinkRepository struct {
	store store.Store
}

// NewPlatformLinkRepository creates a new platform link repository
func NewPlatformLinkRepository(st store.Store) PlatformLinkRepository {
	return &platformLinkRepository{store: st}
}

// Save persists a link under its {identity, platform} key. The TTL is
// derived from the downstream credential's own expiry by the caller; a
// ttl <= 0 persists without expiry.
func (r *platformLinkRepository) Save(ctx context.Context, link *domain.PlatformLink, ttl time.Duration) error {
	return setRecord(ctx, r.store, platformLinkKey(link.IdentityID, link.Platform), link, ttl)
}

// Get retrieves a link. Token-expiry read-time validation belongs to the
// platform link manager.
func (r *platformLinkRepository) Get(ctx context.Context, identityID string, platform domain.Platform) (*domain.PlatformLink, error) {
	return getRecord[domain.PlatformLink](ctx, r.store, platformLinkKey(identityID, platform))
}

// Delete removes a link
func (r *platformLinkRepository) Delete(ctx context.Context, identityID string, platform domain.Platform) error {
	return r.store.Delete(ctx, platformLinkKey(identityID, platform))
}
