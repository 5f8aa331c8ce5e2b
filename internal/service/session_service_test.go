package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/repository"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

func newSessionFixture(t *testing.T, ttl time.Duration) (SessionService, *repository.Repositories) {
	t.Helper()
	mem := store.NewMemory()
	repos := repository.NewRepositories(mem)
	return NewSessionService(repos.Session, ttl, zap.NewNop()), repos
}

func TestSessionCreateAndGet(t *testing.T) {
	svc, _ := newSessionFixture(t, 24*time.Hour)
	ctx := context.Background()

	id, err := svc.Create(ctx, "did:privy:user-1", "identity-token")
	require.NoError(t, err)
	assert.Contains(t, id, "lux_session_")

	session, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "did:privy:user-1", session.IdentityID)
	assert.Equal(t, "identity-token", session.ExternalIdentityToken)
	assert.Len(t, session.Platforms, len(domain.SupportedPlatforms))
	for _, p := range domain.SupportedPlatforms {
		assert.Nil(t, session.Platforms[p])
	}
}

func TestSessionGet_Absent(t *testing.T) {
	svc, _ := newSessionFixture(t, 24*time.Hour)

	session, err := svc.Get(context.Background(), "lux_session_missing")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionGet_LapsedIsDeleted(t *testing.T) {
	svc, repos := newSessionFixture(t, 24*time.Hour)
	ctx := context.Background()

	id, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)

	// age the record while keeping the store key alive
	raw, err := repos.Session.Get(ctx, id)
	require.NoError(t, err)
	raw.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repos.Session.Save(ctx, raw, time.Hour))

	session, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, session)

	_, err = repos.Session.Get(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound, "lapsed session is deleted on read")
}

func TestSessionExtend(t *testing.T) {
	svc, repos := newSessionFixture(t, time.Hour)
	ctx := context.Background()

	id, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)
	before, err := svc.Get(ctx, id)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Extend(ctx, id))

	after, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, after.ExpiresAt.After(before.ExpiresAt))

	ttl, err := repos.Session.TTL(ctx, id)
	require.NoError(t, err)
	assert.Greater(t, ttl, 55*time.Minute)
}

func TestSessionDelete_PrunesIndex(t *testing.T) {
	svc, _ := newSessionFixture(t, time.Hour)
	ctx := context.Background()

	first, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first))

	live, err := svc.ListLiveSessions(ctx, "did:privy:user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{second}, live)

	// deleting an absent session is a no-op
	assert.NoError(t, svc.Delete(ctx, first))
}

func TestSetPlatformLink(t *testing.T) {
	svc, _ := newSessionFixture(t, time.Hour)
	ctx := context.Background()

	id, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)

	link := &domain.PlatformLink{
		Platform:   domain.PlatformSplint,
		IdentityID: "did:privy:user-1",
		Status:     domain.LinkActive,
	}
	require.NoError(t, svc.SetPlatformLink(ctx, id, domain.PlatformSplint, link))

	session, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, session.Platforms[domain.PlatformSplint])
	assert.Equal(t, domain.LinkActive, session.Platforms[domain.PlatformSplint].Status)
	assert.Nil(t, session.Platforms[domain.PlatformMasterworks])

	require.NoError(t, svc.RemovePlatformLink(ctx, id, domain.PlatformSplint))
	session, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, session.Platforms[domain.PlatformSplint])
}

func TestSetPlatformLink_UnknownSession(t *testing.T) {
	svc, _ := newSessionFixture(t, time.Hour)

	err := svc.SetPlatformLink(context.Background(), "lux_session_missing",
		domain.PlatformSplint, &domain.PlatformLink{})
	assert.Equal(t, domain.CodeSessionNotFound, domain.ErrorCode(err))
}

// A stored record with a null platforms map must not panic the slot writers.
func TestPlatformSlotWriters_NilMap(t *testing.T) {
	svc, repos := newSessionFixture(t, time.Hour)
	ctx := context.Background()

	session := &domain.AuthSession{
		SessionID:  "lux_session_1_nilmap",
		IdentityID: "did:privy:user-1",
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, repos.Session.Save(ctx, session, time.Hour))

	require.NoError(t, svc.RemovePlatformLink(ctx, session.SessionID, domain.PlatformSplint))
	require.NoError(t, svc.SetPlatformLink(ctx, session.SessionID, domain.PlatformSplint,
		&domain.PlatformLink{Platform: domain.PlatformSplint, Status: domain.LinkActive}))

	got, err := svc.Get(ctx, session.SessionID)
	require.NoError(t, err)
	require.NotNil(t, got.Platforms[domain.PlatformSplint])
}

func TestMostRecentLiveSession(t *testing.T) {
	svc, repos := newSessionFixture(t, time.Hour)
	ctx := context.Background()

	first, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)

	newest, err := svc.MostRecentLiveSession(ctx, "did:privy:user-1")
	require.NoError(t, err)
	require.NotNil(t, newest)
	assert.Equal(t, second, newest.SessionID)

	// with the newest lapsed, selection falls back to the older one
	raw, err := repos.Session.Get(ctx, second)
	require.NoError(t, err)
	raw.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repos.Session.Save(ctx, raw, time.Hour))

	newest, err = svc.MostRecentLiveSession(ctx, "did:privy:user-1")
	require.NoError(t, err)
	require.NotNil(t, newest)
	assert.Equal(t, first, newest.SessionID)
}

func TestConnectedPlatforms_MissingSessionReadsEmpty(t *testing.T) {
	svc, _ := newSessionFixture(t, time.Hour)

	platforms, err := svc.ConnectedPlatforms(context.Background(), "did:privy:nobody", "")
	require.NoError(t, err)
	assert.Len(t, platforms, len(domain.SupportedPlatforms))
	for _, link := range platforms {
		assert.Nil(t, link)
	}
}

func TestSweepExpired(t *testing.T) {
	svc, repos := newSessionFixture(t, time.Hour)
	ctx := context.Background()

	live, err := svc.Create(ctx, "did:privy:user-1", "tok")
	require.NoError(t, err)
	lapsed, err := svc.Create(ctx, "did:privy:user-2", "tok")
	require.NoError(t, err)

	raw, err := repos.Session.Get(ctx, lapsed)
	require.NoError(t, err)
	raw.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repos.Session.Save(ctx, raw, time.Hour))

	swept, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	session, err := svc.Get(ctx, live)
	require.NoError(t, err)
	assert.NotNil(t, session)
	_, err = repos.Session.Get(ctx, lapsed)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
