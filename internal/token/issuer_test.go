package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOAuthSecret    = "oauth-test-secret-that-is-at-least-32-chars"
	testPlatformSecret = "platform-test-secret-that-is-at-least-32-chars"
)

func newTestIssuer() *Issuer {
	return NewIssuer("http://localhost:8080", testOAuthSecret, testPlatformSecret)
}

func TestIssuer_AccessTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer()

	tokenString, err := issuer.MintAccessToken("client-1", "user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := issuer.VerifyAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Exp, 5*time.Second)
}

func TestIssuer_AccessTokenExpired(t *testing.T) {
	issuer := newTestIssuer()

	tokenString, err := issuer.MintAccessToken("client-1", "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(tokenString)
	assert.Error(t, err)
}

func TestIssuer_NamespacesAreIsolated(t *testing.T) {
	issuer := newTestIssuer()

	accessToken, err := issuer.MintAccessToken("client-1", "user-1", time.Hour)
	require.NoError(t, err)
	platformToken, err := issuer.MintPlatformToken("splint", "puser-1", "a@b.test", time.Hour)
	require.NoError(t, err)

	_, err = issuer.VerifyPlatformToken(accessToken, "splint")
	assert.Error(t, err, "access token must not verify as platform token")

	_, err = issuer.VerifyAccessToken(platformToken)
	assert.Error(t, err, "platform token must not verify as access token")
}

func TestIssuer_PlatformTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer()

	tokenString, err := issuer.MintPlatformToken("masterworks", "puser-7", "u@e.test", 30*time.Minute)
	require.NoError(t, err)

	claims, err := issuer.VerifyPlatformToken(tokenString, "masterworks")
	require.NoError(t, err)
	assert.Equal(t, "masterworks", claims.Platform)
	assert.Equal(t, "puser-7", claims.UserID)
	assert.Equal(t, "u@e.test", claims.Email)
}

func TestIssuer_PlatformMismatch(t *testing.T) {
	issuer := newTestIssuer()

	tokenString, err := issuer.MintPlatformToken("splint", "puser-1", "", time.Hour)
	require.NoError(t, err)

	_, err = issuer.VerifyPlatformToken(tokenString, "realt")
	assert.Error(t, err)
}

func TestIssuer_TamperedToken(t *testing.T) {
	issuer := newTestIssuer()

	tokenString, err := issuer.MintAccessToken("client-1", "user-1", time.Hour)
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(tokenString + "x")
	assert.Error(t, err)
}
