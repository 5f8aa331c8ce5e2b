package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

func TestClientRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(store.NewMemory())

	client := &domain.OAuthClient{
		ID:           "id-1",
		ClientID:     "client-1",
		SecretHash:   "$2a$10$hash",
		Name:         "Test Client",
		RedirectURIs: []string{"https://a.test/cb"},
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repos.Client.Create(ctx, client))

	got, err := repos.Client.GetByClientID(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, client.Name, got.Name)
	assert.Equal(t, client.RedirectURIs, got.RedirectURIs)
	assert.True(t, got.IsConfidential())

	_, err = repos.Client.GetByClientID(ctx, "client-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthCodeRepository_SingleUseDeletion(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(store.NewMemory())

	code := &domain.AuthorizationCode{
		Code:        "C1",
		ClientID:    "client-1",
		RedirectURI: "https://a.test/cb",
		ExpiresAt:   time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, repos.AuthCode.Save(ctx, code, 10*time.Minute))

	got, err := repos.AuthCode.Get(ctx, "C1")
	require.NoError(t, err)
	assert.False(t, got.IsBound())

	require.NoError(t, repos.AuthCode.Delete(ctx, "C1"))

	_, err = repos.AuthCode.Get(ctx, "C1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_RejectsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	repos := NewRepositories(st)

	require.NoError(t, st.Set(ctx, "session:bad", "{not json", time.Hour))

	_, err := repos.Session.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestSessionRepository_IndexAbsentReadsEmpty(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(store.NewMemory())

	ids, err := repos.Session.GetIndex(ctx, "identity-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSessionRepository_TTL(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(store.NewMemory())

	session := &domain.AuthSession{
		SessionID:  "sess-1",
		IdentityID: "identity-1",
		Platforms:  domain.NewPlatformMap(),
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repos.Session.Save(ctx, session, 24*time.Hour))

	ttl, err := repos.Session.TTL(ctx, "sess-1")
	require.NoError(t, err)
	assert.Greater(t, ttl, 23*time.Hour)

	_, err = repos.Session.TTL(ctx, "sess-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlatformLinkRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(store.NewMemory())

	expiry := time.Now().Add(time.Hour)
	link := &domain.PlatformLink{
		Platform:       domain.PlatformSplint,
		IdentityID:     "identity-1",
		PlatformUserID: "puser-1",
		Email:          "a@b.test",
		AccessToken:    "bearer-x",
		TokenExpiry:    &expiry,
		Status:         domain.LinkActive,
	}
	require.NoError(t, repos.PlatformLink.Save(ctx, link, time.Hour))

	got, err := repos.PlatformLink.Get(ctx, "identity-1", domain.PlatformSplint)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkActive, got.Status)
	assert.False(t, got.IsTokenExpired())

	require.NoError(t, repos.PlatformLink.Delete(ctx, "identity-1", domain.PlatformSplint))
	_, err = repos.PlatformLink.Get(ctx, "identity-1", domain.PlatformSplint)
	assert.ErrorIs(t, err, ErrNotFound)
}
