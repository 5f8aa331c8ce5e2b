package handler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/dto"
	"github.com/luxbridge-ai/luxbridge-auth/internal/identity"
	"github.com/luxbridge-ai/luxbridge-auth/internal/platform"
	"github.com/luxbridge-ai/luxbridge-auth/internal/repository"
	"github.com/luxbridge-ai/luxbridge-auth/internal/service"
	"github.com/luxbridge-ai/luxbridge-auth/internal/token"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, identityToken string) (*identity.Verification, error) {
	if identityToken == "bad-token" {
		return nil, domain.NewAuthError(domain.CodeUnauthorized, "identity token rejected")
	}
	return &identity.Verification{
		SubjectID:     "did:privy:user-1",
		Email:         "investor@example.com",
		Name:          "Test Investor",
		WalletAddress: "0xabc",
		ExpiresAt:     time.Now().Add(time.Hour),
	}, nil
}

type fixture struct {
	router   *gin.Engine
	sessions service.SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer := token.NewIssuer("http://localhost:8080",
		"oauth-secret-for-tests-0123456789abcdef",
		"platform-secret-for-tests-0123456789ab")
	mock := platform.NewMockAPI(issuer, map[domain.Platform][]platform.MockAccount{
		domain.PlatformSplint: {{
			UserID:   "splint-user-1",
			Email:    "investor@example.com",
			Password: "demo123",
			Name:     "Test Investor",
		}},
	})
	mockServer := httptest.NewServer(mock)
	t.Cleanup(mockServer.Close)

	mem := store.NewMemory()
	repos := repository.NewRepositories(mem)
	logger := zap.NewNop()

	sessions := service.NewSessionService(repos.Session, 24*time.Hour, logger)
	oauthService := service.NewOAuthService(repos.Client, repos.AuthCode, repos.Token, repos.User,
		sessions, stubVerifier{}, issuer, 4, 10*time.Minute, time.Hour, logger)
	platformClient := platform.NewClient(mockServer.URL, 5*time.Second)
	platformService := service.NewPlatformService(repos.PlatformLink, sessions, platformClient, 24*time.Hour, logger)
	proxyService := service.NewProxyService(sessions, platformService, repos.User, platformClient, logger)
	rateLimiter := service.NewRateLimiter(mem, 100, time.Minute, logger)

	oauthHandler := NewOAuthHandler(oauthService, "http://localhost:8080", nil)
	platformHandler := NewPlatformHandler(platformService, sessions, proxyService, nil)
	sessionHandler := NewSessionHandler(sessions)

	router := gin.New()
	router.Use(CORSMiddleware([]string{"*"}, []string{"GET", "POST", "DELETE", "OPTIONS"}, []string{"Content-Type", "Authorization"}))

	router.GET("/.well-known/oauth-authorization-server", oauthHandler.Discovery)
	router.POST("/register", RateLimitMiddleware(rateLimiter, IPBasedKey), oauthHandler.Register)
	router.POST("/token", RateLimitMiddleware(rateLimiter, IPBasedKey), oauthHandler.Token)
	router.POST("/authorize/store-code", oauthHandler.StoreCode)
	router.POST("/authorize/complete", oauthHandler.CompleteAuthorization)
	router.POST("/authorize/verify-code", oauthHandler.VerifyCode)
	router.POST("/platforms/:platform/link/complete", platformHandler.LinkComplete)

	authed := router.Group("/", AuthMiddleware(oauthService))
	{
		authed.GET("/platforms", platformHandler.ListLinks)
		authed.POST("/platforms/validate", platformHandler.ValidateAll)
		authed.DELETE("/platforms/:platform/link", platformHandler.Unlink)
		authed.POST("/platforms/:platform/call", platformHandler.Call)
		authed.GET("/sessions", sessionHandler.List)
		authed.GET("/sessions/platforms", sessionHandler.ConnectedPlatforms)
		authed.POST("/admin/sessions/sweep", sessionHandler.Sweep)
	}

	return &fixture{router: router, sessions: sessions}
}

func (f *fixture) doJSON(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) doForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func s256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// registerClient registers a public client over HTTP and returns its id.
func (f *fixture) registerClient(t *testing.T, redirectURI string) string {
	t.Helper()
	w := f.doJSON(http.MethodPost, "/register", dto.RegisterClientRequest{
		ClientName:   "claude-desktop",
		RedirectURIs: []string{redirectURI},
		Public:       true,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.RegisterClientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ClientID
}

// obtainToken walks the whole authorization code flow and returns the Bearer
// token.
func (f *fixture) obtainToken(t *testing.T) string {
	t.Helper()
	clientID := f.registerClient(t, "http://localhost:6274/callback")
	verifier := "handler-flow-verifier-0123456789abcdefgh"

	w := f.doJSON(http.MethodPost, "/authorize/store-code", dto.StoreCodeRequest{
		Code:                "flow-code",
		ClientID:            clientID,
		RedirectURI:         "http://localhost:6274/callback",
		CodeChallenge:       s256(verifier),
		CodeChallengeMethod: "S256",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.doJSON(http.MethodPost, "/authorize/complete", dto.CompleteAuthRequest{
		Code:          "flow-code",
		IdentityToken: "good-token",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.doForm("/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {"flow-code"},
		"redirect_uri":  {"http://localhost:6274/callback"},
		"client_id":     {clientID},
		"code_verifier": {verifier},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 3600, resp.ExpiresIn)
	return resp.AccessToken
}

func TestRegisterEndpoint_MissingName(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(http.MethodPost, "/register", gin.H{"redirect_uris": []string{"https://a.test/cb"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorizationCodeFlow(t *testing.T) {
	f := newFixture(t)
	tok := f.obtainToken(t)
	assert.NotEmpty(t, tok)

	// replaying the consumed code fails invalid_code
	w := f.doForm("/token", url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {"flow-code"},
		"redirect_uri": {"http://localhost:6274/callback"},
		"client_id":    {"whatever"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyCode(t *testing.T) {
	f := newFixture(t)
	clientID := f.registerClient(t, "https://a.test/cb")

	w := f.doJSON(http.MethodPost, "/authorize/store-code", dto.StoreCodeRequest{
		Code:        "probe-code",
		ClientID:    clientID,
		RedirectURI: "https://a.test/cb",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.doJSON(http.MethodPost, "/authorize/verify-code", dto.VerifyCodeRequest{Code: "probe-code"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.VerifyCodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.HasUserID)
	assert.Equal(t, clientID, resp.AuthCode.ClientID)

	w = f.doJSON(http.MethodPost, "/authorize/verify-code", dto.VerifyCodeRequest{Code: "nope"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteAuthorization_RejectedIdentity(t *testing.T) {
	f := newFixture(t)
	clientID := f.registerClient(t, "https://a.test/cb")

	w := f.doJSON(http.MethodPost, "/authorize/store-code", dto.StoreCodeRequest{
		Code:        "rejected-code",
		ClientID:    clientID,
		RedirectURI: "https://a.test/cb",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.doJSON(http.MethodPost, "/authorize/complete", dto.CompleteAuthRequest{
		Code:          "rejected-code",
		IdentityToken: "bad-token",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDiscoveryDocument(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(http.MethodGet, "/.well-known/oauth-authorization-server", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "http://localhost:8080", doc["issuer"])
	assert.Contains(t, doc["code_challenge_methods_supported"], "S256")
}

func TestTokenEndpoint_UnsupportedGrant(t *testing.T) {
	f := newFixture(t)

	w := f.doForm("/token", url.Values{"grant_type": {"client_credentials"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkAndProxyFlow(t *testing.T) {
	f := newFixture(t)
	tok := f.obtainToken(t)
	auth := map[string]string{"Authorization": "Bearer " + tok}

	// resolve the session opened by the exchange
	w := f.doJSON(http.MethodGet, "/sessions", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var sessResp struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessResp))
	require.Len(t, sessResp.Sessions, 1)
	sessionID := sessResp.Sessions[0]

	w = f.doJSON(http.MethodPost, "/platforms/splint/link/complete", dto.LinkPlatformRequest{
		SessionID: sessionID,
		Email:     "investor@example.com",
		Password:  "demo123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var linkResp dto.LinkCompleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &linkResp))
	assert.Equal(t, "Splint Invest", linkResp.PlatformName)

	w = f.doJSON(http.MethodGet, "/platforms", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var links []dto.PlatformLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &links))
	require.Len(t, links, 1)
	assert.Equal(t, "active", links[0].Status)

	w = f.doJSON(http.MethodPost, "/platforms/splint/call", dto.ProxyCallRequest{
		SessionID: sessionID,
		Endpoint:  "/portfolio",
	}, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "splint-user-1")

	w = f.doJSON(http.MethodDelete, "/platforms/splint/link", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.doJSON(http.MethodGet, "/platforms", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestLinkComplete_Failures(t *testing.T) {
	f := newFixture(t)
	tok := f.obtainToken(t)
	_ = tok

	w := f.doJSON(http.MethodPost, "/platforms/robinhood/link/complete", dto.LinkPlatformRequest{
		SessionID: "whatever",
		Email:     "investor@example.com",
		Password:  "demo123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.doJSON(http.MethodPost, "/platforms/splint/link/complete", dto.LinkPlatformRequest{
		SessionID: "lux_session_missing",
		Email:     "investor@example.com",
		Password:  "demo123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(http.MethodGet, "/platforms", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.doJSON(http.MethodGet, "/platforms", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/token", nil)
	req.Header.Set("Origin", "http://localhost:6274")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "http://localhost:6274", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestSessionSweepEndpoint(t *testing.T) {
	f := newFixture(t)
	tok := f.obtainToken(t)
	auth := map[string]string{"Authorization": "Bearer " + tok}

	w := f.doJSON(http.MethodPost, "/admin/sessions/sweep", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.SweepResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Swept)
}

func TestRateLimitedEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := store.NewMemory()
	rl := service.NewRateLimiter(mem, 2, time.Minute, zap.NewNop())

	router := gin.New()
	router.POST("/register", RateLimitMiddleware(rl, IPBasedKey), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
