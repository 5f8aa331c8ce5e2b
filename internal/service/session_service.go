package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/repository"
	"github.com/luxbridge-ai/luxbridge-auth/internal/utils"
)

const sessionIDPrefix = "lux_session"

// sessionService implements SessionService interface
type sessionService struct {
	sessionRepo repository.SessionRepository
	sessionTTL  time.Duration
	logger      *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo repository.SessionRepository, sessionTTL time.Duration, logger *zap.Logger) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// Create opens a session with all-nil platform slots and appends its id to
// the identity's session index. Both records get the full session TTL.
func (s *sessionService) Create(ctx context.Context, identityID, externalIdentityToken string) (string, error) {
	suffix, err := utils.SecureToken(9)
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	sessionID := fmt.Sprintf("%s_%d_%s", sessionIDPrefix, time.Now().UnixMilli(), suffix)

	now := time.Now()
	session := &domain.AuthSession{
		SessionID:             sessionID,
		IdentityID:            identityID,
		ExternalIdentityToken: externalIdentityToken,
		Platforms:             domain.NewPlatformMap(),
		CreatedAt:             now,
		ExpiresAt:             now.Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Save(ctx, session, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	ids, err := s.sessionRepo.GetIndex(ctx, identityID)
	if err != nil {
		return "", fmt.Errorf("failed to read session index: %w", err)
	}
	ids = append(ids, sessionID)
	if err := s.sessionRepo.SaveIndex(ctx, identityID, ids, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to update session index: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session_id", sessionID),
		zap.String("identity_id", identityID),
	)
	return sessionID, nil
}

// Get returns the session, or nil if absent. A present-but-lapsed session is
// deleted on read and treated as absent.
func (s *sessionService) Get(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if session.IsExpired() {
		if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("failed to delete lapsed session", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, nil
	}
	return session, nil
}

// Extend pushes ExpiresAt forward by the full TTL and refreshes the store
// TTL to match. No-op when the session is absent.
func (s *sessionService) Extend(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil || session == nil {
		return err
	}

	session.ExpiresAt = time.Now().Add(s.sessionTTL)
	if err := s.sessionRepo.Save(ctx, session, s.sessionTTL); err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}
	return nil
}

// Delete removes the session and drops its id from the identity's index.
// Absence of either record is not an error.
func (s *sessionService) Delete(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	ids, err := s.sessionRepo.GetIndex(ctx, session.IdentityID)
	if err != nil {
		s.logger.Warn("failed to read session index during delete", zap.Error(err))
		return nil
	}
	pruned := ids[:0]
	for _, id := range ids {
		if id != sessionID {
			pruned = append(pruned, id)
		}
	}
	if err := s.sessionRepo.SaveIndex(ctx, session.IdentityID, pruned, s.sessionTTL); err != nil {
		s.logger.Warn("failed to rewrite session index during delete", zap.Error(err))
	}
	return nil
}

// SetPlatformLink mirrors a link into the session's platform slot. The
// store TTL of the session is preserved, not refreshed. Two concurrent
// updates to different slots can race; last writer wins.
func (s *sessionService) SetPlatformLink(ctx context.Context, sessionID string, p domain.Platform, link *domain.PlatformLink) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.NewAuthError(domain.CodeSessionNotFound, "session %s not found", sessionID)
	}

	if session.Platforms == nil {
		session.Platforms = domain.NewPlatformMap()
	}
	session.Platforms[p] = link

	ttl, err := s.sessionRepo.TTL(ctx, sessionID)
	if err != nil || ttl <= 0 {
		ttl = time.Until(session.ExpiresAt)
	}
	if err := s.sessionRepo.Save(ctx, session, ttl); err != nil {
		return fmt.Errorf("failed to update session platforms: %w", err)
	}
	return nil
}

// RemovePlatformLink clears a platform slot. No-op when the session is
// absent.
func (s *sessionService) RemovePlatformLink(ctx context.Context, sessionID string, p domain.Platform) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil || session == nil {
		return err
	}

	if session.Platforms == nil {
		session.Platforms = domain.NewPlatformMap()
	}
	session.Platforms[p] = nil

	ttl, err := s.sessionRepo.TTL(ctx, sessionID)
	if err != nil || ttl <= 0 {
		ttl = time.Until(session.ExpiresAt)
	}
	if err := s.sessionRepo.Save(ctx, session, ttl); err != nil {
		return fmt.Errorf("failed to update session platforms: %w", err)
	}
	return nil
}

// ListLiveSessions prunes lapsed ids out of the identity's index, rewrites
// it, and returns the remainder.
func (s *sessionService) ListLiveSessions(ctx context.Context, identityID string) ([]string, error) {
	ids, err := s.sessionRepo.GetIndex(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session index: %w", err)
	}

	var live []string
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if session != nil {
			live = append(live, id)
		}
	}

	if len(live) != len(ids) {
		if err := s.sessionRepo.SaveIndex(ctx, identityID, live, s.sessionTTL); err != nil {
			s.logger.Warn("failed to rewrite pruned session index", zap.Error(err))
		}
	}
	return live, nil
}

// ConnectedPlatforms returns the platform slot map of the given session, or
// of the most recently created live session when no session id is supplied.
// Missing sessions read as all-nil slots.
func (s *sessionService) ConnectedPlatforms(ctx context.Context, identityID, sessionID string) (map[domain.Platform]*domain.PlatformLink, error) {
	var session *domain.AuthSession
	var err error

	if sessionID != "" {
		session, err = s.Get(ctx, sessionID)
	} else {
		session, err = s.MostRecentLiveSession(ctx, identityID)
	}
	if err != nil {
		return nil, err
	}
	if session == nil || session.Platforms == nil {
		return domain.NewPlatformMap(), nil
	}
	return session.Platforms, nil
}

// MostRecentLiveSession returns the newest live session for the identity,
// or nil when none exist.
func (s *sessionService) MostRecentLiveSession(ctx context.Context, identityID string) (*domain.AuthSession, error) {
	ids, err := s.ListLiveSessions(ctx, identityID)
	if err != nil {
		return nil, err
	}

	var newest *domain.AuthSession
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if session == nil {
			continue
		}
		if newest == nil || session.CreatedAt.After(newest.CreatedAt) {
			newest = session
		}
	}
	return newest, nil
}

// SweepExpired scans all session keys and deletes lapsed records. Individual
// read or delete failures are logged and skipped; the sweep never aborts.
func (s *sessionService) SweepExpired(ctx context.Context) (int, error) {
	keys, err := s.sessionRepo.SessionKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list session keys: %w", err)
	}

	swept := 0
	for _, key := range keys {
		session, err := s.sessionRepo.GetByKey(ctx, key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			s.logger.Warn("sweep: failed to read session", zap.String("key", key), zap.Error(err))
			continue
		}
		if !session.IsExpired() {
			continue
		}
		if err := s.sessionRepo.DeleteKey(ctx, key); err != nil {
			s.logger.Warn("sweep: failed to delete session", zap.String("key", key), zap.Error(err))
			continue
		}
		swept++
	}

	s.logger.Info("session sweep finished", zap.Int("swept", swept), zap.Int("scanned", len(keys)))
	return swept, nil
}
