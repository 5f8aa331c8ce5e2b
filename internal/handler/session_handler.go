package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/dto"
	"github.com/luxbridge-ai/luxbridge-auth/internal/service"
)

// SessionHandler handles session lifecycle requests
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// List returns the caller's live session ids
// @Summary List live sessions
// @Produce json
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	identityID := c.GetString(ctxIdentityID)

	ids, err := h.sessionService.ListLiveSessions(c.Request.Context(), identityID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": ids})
}

// ConnectedPlatforms returns the platform slots of the caller's session. With
// no session_id query parameter it falls back to the most recent live
// session; a missing session reads as all-nil slots.
// @Summary Show connected platforms for a session
// @Produce json
// @Router /sessions/platforms [get]
func (h *SessionHandler) ConnectedPlatforms(c *gin.Context) {
	identityID := c.GetString(ctxIdentityID)
	sessionID := c.Query("session_id")

	platforms, err := h.sessionService.ConnectedPlatforms(c.Request.Context(), identityID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make(map[string]*dto.PlatformLinkResponse, len(platforms))
	for p, link := range platforms {
		if link == nil {
			out[string(p)] = nil
			continue
		}
		resp := linkResponse(link)
		out[string(p)] = &resp
	}
	c.JSON(http.StatusOK, gin.H{"platforms": out})
}

// Extend refreshes the session's expiry window
// @Summary Extend a session
// @Produce json
// @Router /sessions/{sessionId}/extend [post]
func (h *SessionHandler) Extend(c *gin.Context) {
	sessionID := c.Param("sessionId")

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if session == nil || session.IdentityID != c.GetString(ctxIdentityID) {
		respondError(c, domain.NewAuthError(domain.CodeSessionNotFound, "session not found"))
		return
	}

	if err := h.sessionService.Extend(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "session extended"})
}

// Delete ends a session
// @Summary Delete a session
// @Produce json
// @Router /sessions/{sessionId} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID := c.Param("sessionId")

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if session != nil && session.IdentityID != c.GetString(ctxIdentityID) {
		respondError(c, domain.NewAuthError(domain.CodeSessionNotFound, "session not found"))
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "session deleted"})
}

// Sweep deletes every lapsed session record. Wired under the admin group;
// meant to be hit by an external scheduler rather than a timer in here.
// @Summary Sweep expired sessions
// @Produce json
// @Router /admin/sessions/sweep [post]
func (h *SessionHandler) Sweep(c *gin.Context) {
	swept, err := h.sessionService.SweepExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SweepResponse{Swept: swept})
}
