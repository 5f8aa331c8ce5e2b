package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/dto"
	"github.com/luxbridge-ai/luxbridge-auth/internal/service"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/observability"
)

// OAuthHandler handles client registration and the authorization code flow
type OAuthHandler struct {
	oauthService service.OAuthService
	issuerURL    string
	metrics      *observability.Metrics
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthService service.OAuthService, issuerURL string, metrics *observability.Metrics) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		issuerURL:    issuerURL,
		metrics:      metrics,
	}
}

// Register handles dynamic client registration
// @Summary Register an OAuth client
// @Accept json
// @Produce json
// @Param request body dto.RegisterClientRequest true "Registration request"
// @Success 201 {object} dto.RegisterClientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /register [post]
func (h *OAuthHandler) Register(c *gin.Context) {
	var req dto.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   domain.CodeInvalidRedirectURIs,
			Message: err.Error(),
		})
		return
	}

	client, err := h.oauthService.RegisterClient(c.Request.Context(), req.ClientName, req.RedirectURIs, req.Public)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterClientResponse{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		ClientName:   client.Name,
		RedirectURIs: client.RedirectURIs,
	})
}

// StoreCode opens a pending authorization code
// @Summary Store a pending authorization code
// @Accept json
// @Produce json
// @Success 200 {object} dto.StoreCodeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /authorize/store-code [post]
func (h *OAuthHandler) StoreCode(c *gin.Context) {
	var req dto.StoreCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   domain.CodeInvalidCode,
			Message: err.Error(),
		})
		return
	}

	err := h.oauthService.StoreCode(c.Request.Context(), req.Code, req.ClientID,
		req.RedirectURI, req.CodeChallenge, req.CodeChallengeMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StoreCodeResponse{Success: true})
}

// CompleteAuthorization binds a verified external identity to a pending code
// @Summary Complete the authorization step
// @Accept json
// @Produce json
// @Success 200 {object} dto.CompleteAuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /authorize/complete [post]
func (h *OAuthHandler) CompleteAuthorization(c *gin.Context) {
	var req dto.CompleteAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   domain.CodeInvalidOrExpiredCode,
			Message: err.Error(),
		})
		return
	}

	if err := h.oauthService.CompleteAuthorization(c.Request.Context(), req.Code, req.IdentityToken); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CompleteAuthResponse{
		Success:  true,
		Message:  "authorization code bound",
		AuthCode: req.Code,
	})
}

// VerifyCode probes a pending code while the client polls for the identity
// step to finish
// @Summary Verify a pending authorization code
// @Accept json
// @Produce json
// @Success 200 {object} dto.VerifyCodeResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /authorize/verify-code [post]
func (h *OAuthHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   domain.CodeInvalidCode,
			Message: err.Error(),
		})
		return
	}

	authCode, err := h.oauthService.PeekCode(c.Request.Context(), req.Code)
	if err != nil {
		// an unknown code is a 404 here, unlike the token endpoint
		if domain.ErrorCode(err) == domain.CodeInvalidOrExpiredCode {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   domain.CodeInvalidOrExpiredCode,
				Message: "authorization code not found",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyCodeResponse{
		Success:   true,
		HasUserID: authCode.IsBound(),
		AuthCode: dto.AuthCodeStatus{
			Code:      authCode.Code,
			ClientID:  authCode.ClientID,
			ExpiresAt: authCode.ExpiresAt.Format(time.RFC3339),
			HasUser:   authCode.IsBound(),
		},
	})
}

// Token handles the form-encoded token exchange
// @Summary Exchange an authorization code for an access token
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /token [post]
func (h *OAuthHandler) Token(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	if grantType != "authorization_code" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "unsupported_grant_type",
			Message: "only authorization_code is supported",
		})
		return
	}

	tok, err := h.oauthService.Exchange(c.Request.Context(), &service.ExchangeRequest{
		GrantType:    grantType,
		Code:         c.PostForm("code"),
		RedirectURI:  c.PostForm("redirect_uri"),
		ClientID:     c.PostForm("client_id"),
		ClientSecret: c.PostForm("client_secret"),
		CodeVerifier: c.PostForm("code_verifier"),
	})
	if err != nil {
		h.metrics.CountTokenExchange(c.Request.Context(), domain.ErrorCode(err))
		respondError(c, err)
		return
	}
	h.metrics.CountTokenExchange(c.Request.Context(), "success")

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   tok.ExpiresIn,
	})
}

// Discovery serves the RFC 8414 authorization server metadata document.
func (h *OAuthHandler) Discovery(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"issuer":                                h.issuerURL,
		"registration_endpoint":                 h.issuerURL + "/register",
		"token_endpoint":                        h.issuerURL + "/token",
		"authorization_endpoint":                h.issuerURL + "/authorize",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code"},
		"code_challenge_methods_supported":      []string{"S256", "plain"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_post", "none"},
	})
}
