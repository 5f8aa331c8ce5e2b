package platform

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/token"
)

// mockTokenTTL is the lifetime of bearer tokens minted by the mock APIs.
const mockTokenTTL = time.Hour

// MockAccount is a seeded demo account on a mock platform.
type MockAccount struct {
	UserID   string
	Email    string
	Password string
	Name     string
}

// MockAPI serves stand-in platform APIs for local development and tests. It
// mints and verifies its bearer tokens through the platform namespace of
// the token issuer, so they never pass for OAuth access tokens.
type MockAPI struct {
	issuer   *token.Issuer
	accounts map[domain.Platform][]MockAccount
	router   *gin.Engine
}

// NewMockAPI builds the mock platform API handler.
func NewMockAPI(issuer *token.Issuer, accounts map[domain.Platform][]MockAccount) *MockAPI {
	m := &MockAPI{
		issuer:   issuer,
		accounts: accounts,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	api := router.Group("/api/:platform")
	{
		api.POST("/auth/login", m.login)
		api.GET("/auth/me", m.me)
		api.GET("/portfolio", m.portfolio)
	}
	m.router = router

	return m
}

// ServeHTTP implements http.Handler.
func (m *MockAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.router.ServeHTTP(w, r)
}

func (m *MockAPI) login(c *gin.Context) {
	platform := domain.Platform(c.Param("platform"))
	if !domain.IsSupportedPlatform(platform) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown platform"})
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, account := range m.accounts[platform] {
		if account.Email == req.Email && account.Password == req.Password {
			bearer, err := m.issuer.MintPlatformToken(string(platform), account.UserID, account.Email, mockTokenTTL)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint token"})
				return
			}
			expiresAt := time.Now().Add(mockTokenTTL)
			c.JSON(http.StatusOK, LoginResult{
				PlatformUserID: account.UserID,
				Email:          account.Email,
				Name:           account.Name,
				AccessToken:    bearer,
				ExpiresAt:      &expiresAt,
			})
			return
		}
	}

	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}

func (m *MockAPI) authenticate(c *gin.Context) (*token.PlatformClaims, bool) {
	platform := c.Param("platform")

	header := c.GetHeader("Authorization")
	bearer, found := strings.CutPrefix(header, "Bearer ")
	if !found || bearer == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return nil, false
	}

	claims, err := m.issuer.VerifyPlatformToken(bearer, platform)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
		return nil, false
	}
	return claims, true
}

func (m *MockAPI) me(c *gin.Context) {
	claims, ok := m.authenticate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": claims.UserID,
		"email":   claims.Email,
	})
}

func (m *MockAPI) portfolio(c *gin.Context) {
	claims, ok := m.authenticate(c)
	if !ok {
		return
	}
	// Static demo holdings; enough for the proxy to have something to fetch.
	c.JSON(http.StatusOK, gin.H{
		"platform": claims.Platform,
		"user_id":  claims.UserID,
		"assets": []gin.H{
			{"id": "asset-1", "name": "Demo Asset", "units": 3},
		},
	})
}
