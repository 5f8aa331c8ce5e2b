package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/dto"
	"github.com/luxbridge-ai/luxbridge-auth/internal/service"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/observability"
)

// PlatformHandler handles platform linking and the authenticated call proxy
type PlatformHandler struct {
	platformService service.PlatformService
	sessionService  service.SessionService
	proxyService    service.ProxyService
	metrics         *observability.Metrics
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(
	platformService service.PlatformService,
	sessionService service.SessionService,
	proxyService service.ProxyService,
	metrics *observability.Metrics,
) *PlatformHandler {
	return &PlatformHandler{
		platformService: platformService,
		sessionService:  sessionService,
		proxyService:    proxyService,
		metrics:         metrics,
	}
}

// LinkComplete validates platform credentials and stores the link
// @Summary Link a downstream platform account
// @Accept json
// @Produce json
// @Success 200 {object} dto.LinkCompleteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /platforms/{platform}/link/complete [post]
func (h *PlatformHandler) LinkComplete(c *gin.Context) {
	p := domain.Platform(c.Param("platform"))
	if !domain.IsSupportedPlatform(p) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   domain.CodeInvalidPlatform,
			Message: "unsupported platform: " + string(p),
		})
		return
	}

	var req dto.LinkPlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   domain.CodeInvalidCredentials,
			Message: err.Error(),
		})
		return
	}

	link, err := h.platformService.LinkPlatform(c.Request.Context(), req.SessionID, p, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.CountLinkOperation(c.Request.Context(), string(p), "link")

	c.JSON(http.StatusOK, dto.LinkCompleteResponse{
		Success:      true,
		Platform:     string(p),
		PlatformName: p.DisplayName(),
		LinkedAt:     link.LinkedAt.Format(time.RFC3339),
		Message:      p.DisplayName() + " account linked",
	})
}

// ListLinks returns the caller's stored platform links
// @Summary List linked platforms
// @Produce json
// @Success 200 {array} dto.PlatformLinkResponse
// @Router /platforms [get]
func (h *PlatformHandler) ListLinks(c *gin.Context) {
	identityID := c.GetString(ctxIdentityID)

	links, err := h.platformService.ListLinks(c.Request.Context(), identityID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.PlatformLinkResponse, 0, len(links))
	for _, link := range links {
		out = append(out, linkResponse(link))
	}
	c.JSON(http.StatusOK, out)
}

// Unlink deletes a stored platform link
// @Summary Unlink a platform account
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /platforms/{platform}/link [delete]
func (h *PlatformHandler) Unlink(c *gin.Context) {
	identityID := c.GetString(ctxIdentityID)
	p := domain.Platform(c.Param("platform"))

	if err := h.platformService.DeleteLink(c.Request.Context(), identityID, p); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.CountLinkOperation(c.Request.Context(), string(p), "unlink")

	// drop the mirrored slot from live sessions too; best effort
	if sessions, err := h.sessionService.ListLiveSessions(c.Request.Context(), identityID); err == nil {
		for _, id := range sessions {
			_ = h.sessionService.RemovePlatformLink(c.Request.Context(), id, p)
		}
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: p.DisplayName() + " unlinked"})
}

// ValidateAll re-checks every stored link against its platform
// @Summary Re-validate all platform links
// @Produce json
// @Success 200 {array} dto.PlatformLinkResponse
// @Router /platforms/validate [post]
func (h *PlatformHandler) ValidateAll(c *gin.Context) {
	identityID := c.GetString(ctxIdentityID)

	if err := h.platformService.ValidateAll(c.Request.Context(), identityID); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.CountLinkOperation(c.Request.Context(), "all", "validate")

	links, err := h.platformService.ListLinks(c.Request.Context(), identityID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.PlatformLinkResponse, 0, len(links))
	for _, link := range links {
		out = append(out, linkResponse(link))
	}
	c.JSON(http.StatusOK, out)
}

// Call proxies an authenticated request to a downstream platform
// @Summary Call a platform API on the caller's behalf
// @Accept json
// @Produce json
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /platforms/{platform}/call [post]
func (h *PlatformHandler) Call(c *gin.Context) {
	p := domain.Platform(c.Param("platform"))

	var req dto.ProxyCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   domain.CodeInvalidSession,
			Message: err.Error(),
		})
		return
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	respBody, err := h.proxyService.Call(c.Request.Context(), req.SessionID, p, req.Endpoint, method, body)
	if err != nil {
		h.metrics.CountPlatformCall(c.Request.Context(), string(p), domain.ErrorCode(err))
		respondError(c, err)
		return
	}
	h.metrics.CountPlatformCall(c.Request.Context(), string(p), "success")

	c.Data(http.StatusOK, "application/json", respBody)
}

func linkResponse(link *domain.PlatformLink) dto.PlatformLinkResponse {
	resp := dto.PlatformLinkResponse{
		Platform:       string(link.Platform),
		PlatformUserID: link.PlatformUserID,
		Email:          link.Email,
		Name:           link.Name,
		Status:         string(link.Status),
		LinkedAt:       link.LinkedAt.Format(time.RFC3339),
		LastUsedAt:     link.LastUsedAt.Format(time.RFC3339),
	}
	if link.TokenExpiry != nil {
		s := link.TokenExpiry.Format(time.RFC3339)
		resp.TokenExpiry = &s
	}
	return resp
}
