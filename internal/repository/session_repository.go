package repository

import (
	"context"
	"errors"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	store store.Store
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(st store.Store) SessionRepository {
	return &sessionRepository{store: st}
}

// Save persists a session with the given store TTL
func (r *sessionRepository) Save(ctx context.Context, session *domain.AuthSession, ttl time.Duration) error {
	return setRecord(ctx, r.store, sessionKey(session.SessionID), session, ttl)
}

// Get retrieves a session by id. Lazy expiry of lapsed-but-present sessions
// is the session manager's job, not the accessor's.
func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	return r.GetByKey(ctx, sessionKey(sessionID))
}

// Delete removes a session record
func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, sessionKey(sessionID))
}

// TTL returns the remaining store TTL of a session record
func (r *sessionRepository) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := r.store.TTL(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return ttl, nil
}

// GetIndex reads the per-identity list of session ids. An absent index reads
// as empty.
func (r *sessionRepository) GetIndex(ctx context.Context, identityID string) ([]string, error) {
	ids, err := getRecord[[]string](ctx, r.store, userSessionsKey(identityID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return *ids, nil
}

// SaveIndex rewrites the per-identity session index
func (r *sessionRepository) SaveIndex(ctx context.Context, identityID string, sessionIDs []string, ttl time.Duration) error {
	return setRecord(ctx, r.store, userSessionsKey(identityID), sessionIDs, ttl)
}

// SessionKeys lists every session key; only the explicit maintenance sweep
// uses this.
func (r *sessionRepository) SessionKeys(ctx context.Context) ([]string, error) {
	return r.store.Keys(ctx, sessionKeyPattern)
}

// GetByKey retrieves a session by its raw store key
func (r *sessionRepository) GetByKey(ctx context.Context, key string) (*domain.AuthSession, error) {
	return getRecord[domain.AuthSession](ctx, r.store, key)
}

// DeleteKey removes a session by its raw store key
func (r *sessionRepository) DeleteKey(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}
