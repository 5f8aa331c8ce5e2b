package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/platform"
	"github.com/luxbridge-ai/luxbridge-auth/internal/repository"
)

// platformService implements PlatformService interface
type platformService struct {
	linkRepo       repository.PlatformLinkRepository
	sessions       SessionService
	client         *platform.Client
	defaultLinkTTL time.Duration
	logger         *zap.Logger
}

// NewPlatformService creates a new platform link service
func NewPlatformService(
	linkRepo repository.PlatformLinkRepository,
	sessions SessionService,
	client *platform.Client,
	defaultLinkTTL time.Duration,
	logger *zap.Logger,
) PlatformService {
	return &platformService{
		linkRepo:       linkRepo,
		sessions:       sessions,
		client:         client,
		defaultLinkTTL: defaultLinkTTL,
		logger:         logger,
	}
}

// ValidateCredentials checks an email/password pair against the platform
// without producing a stored link.
func (s *platformService) ValidateCredentials(ctx context.Context, p domain.Platform, email, password string) (*platform.LoginResult, error) {
	if !domain.IsSupportedPlatform(p) {
		return nil, domain.NewAuthError(domain.CodeInvalidPlatform, "unsupported platform: %s", p)
	}
	return s.client.Login(ctx, p, email, password)
}

// LinkPlatform validates the credentials, persists a fresh active link under
// the session's identity and mirrors it into the session record. The stored
// TTL follows the platform token's own lifetime when the platform reported
// one.
func (s *platformService) LinkPlatform(ctx context.Context, sessionID string, p domain.Platform, email, password string) (*domain.PlatformLink, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.NewAuthError(domain.CodeInvalidSession, "invalid or expired session")
	}

	result, err := s.ValidateCredentials(ctx, p, email, password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	link := &domain.PlatformLink{
		Platform:       p,
		IdentityID:     session.IdentityID,
		PlatformUserID: result.PlatformUserID,
		Email:          result.Email,
		Name:           result.Name,
		AccessToken:    result.AccessToken,
		TokenExpiry:    result.ExpiresAt,
		LinkedAt:       now,
		LastUsedAt:     now,
		Status:         domain.LinkActive,
	}

	if err := s.linkRepo.Save(ctx, link, s.linkTTL(link)); err != nil {
		return nil, fmt.Errorf("failed to persist platform link: %w", err)
	}
	if err := s.sessions.SetPlatformLink(ctx, sessionID, p, link); err != nil {
		return nil, err
	}

	s.logger.Info("platform linked",
		zap.String("platform", string(p)),
		zap.String("identity_id", session.IdentityID),
		zap.String("platform_user_id", result.PlatformUserID),
	)
	return link, nil
}

// linkTTL derives the stored lifetime of a link from its token expiry. A
// link whose token already lapsed is stored without expiry; the read path
// deletes it on first access.
func (s *platformService) linkTTL(link *domain.PlatformLink) time.Duration {
	if link.TokenExpiry == nil {
		return s.defaultLinkTTL
	}
	ttl := time.Until(*link.TokenExpiry)
	if ttl <= 0 {
		return 0
	}
	return ttl
}

// GetLink returns the stored link, or nil when absent. A link whose platform
// token has lapsed is deleted on read and treated as absent.
func (s *platformService) GetLink(ctx context.Context, identityID string, p domain.Platform) (*domain.PlatformLink, error) {
	link, err := s.linkRepo.Get(ctx, identityID, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read platform link: %w", err)
	}

	if link.IsTokenExpired() {
		if err := s.linkRepo.Delete(ctx, identityID, p); err != nil {
			s.logger.Warn("failed to delete lapsed platform link",
				zap.String("platform", string(p)), zap.Error(err))
		}
		return nil, nil
	}
	return link, nil
}

// DeleteLink removes the stored link. Best effort: absence is not an
// error and a store failure must never block a user-initiated disconnect.
func (s *platformService) DeleteLink(ctx context.Context, identityID string, p domain.Platform) error {
	if !domain.IsSupportedPlatform(p) {
		return domain.NewAuthError(domain.CodeInvalidPlatform, "unsupported platform: %s", p)
	}
	if err := s.linkRepo.Delete(ctx, identityID, p); err != nil {
		s.logger.Warn("failed to delete platform link",
			zap.String("platform", string(p)), zap.Error(err))
	}
	return nil
}

// TouchLink bumps LastUsedAt on the stored link without changing its TTL
// semantics. Best effort; an absent link is a no-op.
func (s *platformService) TouchLink(ctx context.Context, identityID string, p domain.Platform) error {
	link, err := s.GetLink(ctx, identityID, p)
	if err != nil || link == nil {
		return err
	}
	link.LastUsedAt = time.Now()
	if err := s.linkRepo.Save(ctx, link, s.linkTTL(link)); err != nil {
		return fmt.Errorf("failed to update platform link: %w", err)
	}
	return nil
}

// ListLinks probes every supported platform slot for the identity and
// returns the links that exist.
func (s *platformService) ListLinks(ctx context.Context, identityID string) ([]*domain.PlatformLink, error) {
	var links []*domain.PlatformLink
	for _, p := range domain.SupportedPlatforms {
		link, err := s.GetLink(ctx, identityID, p)
		if err != nil {
			return nil, err
		}
		if link != nil {
			links = append(links, link)
		}
	}
	return links, nil
}

// ValidateAll re-checks every stored link for the identity against the live
// platform API and rewrites each with its fresh status: active when the
// platform accepts the token, expired when it rejects it, invalid when the
// check fails for any other reason. Reactivation of previously expired or
// invalid links happens here too.
func (s *platformService) ValidateAll(ctx context.Context, identityID string) error {
	for _, p := range domain.SupportedPlatforms {
		link, err := s.GetLink(ctx, identityID, p)
		if err != nil {
			return err
		}
		if link == nil {
			continue
		}

		switch err := s.client.CheckIdentity(ctx, p, link.AccessToken); {
		case err == nil:
			link.Status = domain.LinkActive
		case errors.Is(err, platform.ErrTokenRejected):
			link.Status = domain.LinkExpired
		default:
			link.Status = domain.LinkInvalid
			s.logger.Warn("platform link validation failed",
				zap.String("platform", string(p)), zap.Error(err))
		}

		if err := s.linkRepo.Save(ctx, link, s.linkTTL(link)); err != nil {
			return fmt.Errorf("failed to rewrite platform link: %w", err)
		}
	}
	return nil
}
