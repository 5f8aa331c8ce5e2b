package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/platform"
	"github.com/luxbridge-ai/luxbridge-auth/internal/repository"
)

// proxyService implements ProxyService interface
type proxyService struct {
	sessions  SessionService
	platforms PlatformService
	userRepo  repository.UserRepository
	client    *platform.Client
	logger    *zap.Logger
}

// NewProxyService creates a new authenticated call proxy
func NewProxyService(
	sessions SessionService,
	platforms PlatformService,
	userRepo repository.UserRepository,
	client *platform.Client,
	logger *zap.Logger,
) ProxyService {
	return &proxyService{
		sessions:  sessions,
		platforms: platforms,
		userRepo:  userRepo,
		client:    client,
		logger:    logger,
	}
}

// Call resolves the session's active link for the platform, forwards the
// request with the stored platform token, and returns the raw response body.
// A 401 from the platform demotes the mirrored link to invalid so later
// calls fail fast without another round trip.
func (s *proxyService) Call(ctx context.Context, sessionID string, p domain.Platform, endpoint, method string, body io.Reader) ([]byte, error) {
	if !domain.IsSupportedPlatform(p) {
		return nil, domain.NewAuthError(domain.CodeInvalidPlatform, "unsupported platform: %s", p)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.NewAuthError(domain.CodeInvalidSession, "invalid or expired session")
	}

	link := session.Platforms[p]
	if link == nil || link.Status != domain.LinkActive {
		return nil, domain.NewAuthError(domain.CodePlatformNotLinked,
			"platform %s is not linked or not active for this session", p)
	}

	status, respBody, statusText, err := s.client.Call(ctx, p, endpoint, method, body, link.AccessToken)
	if err != nil {
		return nil, domain.NewAuthError(domain.CodePlatformAPIError, "platform call failed: %v", err)
	}

	switch {
	case status == http.StatusUnauthorized:
		s.demoteLink(ctx, sessionID, p, link)
		return nil, domain.NewAuthError(domain.CodePlatformAuthExpired,
			"platform %s rejected the stored token; re-link required", p)
	case status < 200 || status >= 300:
		return nil, domain.NewAuthError(domain.CodePlatformAPIError,
			"platform API error: %s", statusText)
	}

	s.recordActivity(ctx, session, p)
	return respBody, nil
}

// demoteLink marks the session's mirrored link invalid after the platform
// rejected its token. Best effort; a failure here only costs a wasted
// round trip on the next call.
func (s *proxyService) demoteLink(ctx context.Context, sessionID string, p domain.Platform, link *domain.PlatformLink) {
	link.Status = domain.LinkInvalid
	if err := s.sessions.SetPlatformLink(ctx, sessionID, p, link); err != nil {
		s.logger.Warn("failed to demote platform link after 401",
			zap.String("platform", string(p)), zap.Error(err))
	}
}

// recordActivity bumps LastUsedAt on the session's mirrored link and the
// identity's LastActiveAt after a successful call, then touches the
// standalone link record. Failures are logged, never surfaced.
func (s *proxyService) recordActivity(ctx context.Context, session *domain.AuthSession, p domain.Platform) {
	if link := session.Platforms[p]; link != nil {
		link.LastUsedAt = time.Now()
		if err := s.sessions.SetPlatformLink(ctx, session.SessionID, p, link); err != nil {
			s.logger.Warn("failed to record link usage on session", zap.Error(err))
		}
	}

	if err := s.platforms.TouchLink(ctx, session.IdentityID, p); err != nil {
		s.logger.Warn("failed to touch platform link", zap.Error(err))
	}

	user, err := s.userRepo.Get(ctx, session.IdentityID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to read user for activity ping", zap.Error(err))
		}
		return
	}
	user.LastActiveAt = time.Now()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Warn("failed to record user activity", zap.Error(err))
	}
}
