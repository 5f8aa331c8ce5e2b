package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// Repositories holds all typed accessors over the credential store
type Repositories struct {
	Client       ClientRepository
	AuthCode     AuthCodeRepository
	Token        TokenRepository
	Session      SessionRepository
	PlatformLink PlatformLinkRepository
	User         UserRepository
}

// NewRepositories creates all repositories over a single store
func NewRepositories(st store.Store) *Repositories {
	return &Repositories{
		Client:       NewClientRepository(st),
		AuthCode:     NewAuthCodeRepository(st),
		Token:        NewTokenRepository(st),
		Session:      NewSessionRepository(st),
		PlatformLink: NewPlatformLinkRepository(st),
		User:         NewUserRepository(st),
	}
}

// getRecord reads and decodes one record, mapping store absence to
// ErrNotFound and decode failures to ErrCorruptRecord.
func getRecord[T any](ctx context.Context, st store.Store, key string) (*T, error) {
	raw, err := st.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var record T
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, ErrCorruptRecord)
	}
	return &record, nil
}

// setRecord encodes and writes one record.
func setRecord(ctx context.Context, st store.Store, key string, record any, ttl time.Duration) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := st.Set(ctx, key, string(raw), ttl); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
