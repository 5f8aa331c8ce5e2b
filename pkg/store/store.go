package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("key not found")

// NoExpiry is passed as TTL when a record must be persisted without expiry.
const NoExpiry time.Duration = 0

// Store is a TTL-capable key-value store. Every persisted record in the
// service (clients, authorization codes, tokens, sessions, platform links,
// identities) goes through it; no component talks to the backend directly.
//
// Per-key operations are atomic, but read-modify-write sequences across two
// calls are not. Callers that need stronger guarantees must tolerate
// last-writer-wins.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key. A ttl <= 0 persists without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining time to live for key. It returns 0 for keys
	// persisted without expiry and ErrNotFound for absent keys.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Keys returns all keys matching a glob-style pattern such as "session:*".
	// Used only by explicitly triggered maintenance sweeps.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Ping checks backend availability.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
