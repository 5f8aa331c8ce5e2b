package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
	"github.com/luxbridge-ai/luxbridge-auth/internal/identity"
	"github.com/luxbridge-ai/luxbridge-auth/internal/repository"
	"github.com/luxbridge-ai/luxbridge-auth/internal/token"
	"github.com/luxbridge-ai/luxbridge-auth/internal/utils"
)

// oauthService implements OAuthService interface
type oauthService struct {
	clientRepo   repository.ClientRepository
	authCodeRepo repository.AuthCodeRepository
	tokenRepo    repository.TokenRepository
	userRepo     repository.UserRepository
	sessions     SessionService
	verifier     identity.Verifier
	issuer       *token.Issuer
	bcryptCost   int
	codeExpiry   time.Duration
	tokenExpiry  time.Duration
	logger       *zap.Logger
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(
	clientRepo repository.ClientRepository,
	authCodeRepo repository.AuthCodeRepository,
	tokenRepo repository.TokenRepository,
	userRepo repository.UserRepository,
	sessions SessionService,
	verifier identity.Verifier,
	issuer *token.Issuer,
	bcryptCost int,
	codeExpiry, tokenExpiry time.Duration,
	logger *zap.Logger,
) OAuthService {
	return &oauthService{
		clientRepo:   clientRepo,
		authCodeRepo: authCodeRepo,
		tokenRepo:    tokenRepo,
		userRepo:     userRepo,
		sessions:     sessions,
		verifier:     verifier,
		issuer:       issuer,
		bcryptCost:   bcryptCost,
		codeExpiry:   codeExpiry,
		tokenExpiry:  tokenExpiry,
		logger:       logger,
	}
}

// RegisterClient validates and persists a new OAuth client. The plaintext
// secret is returned once; only its bcrypt hash is stored. Public clients
// get no secret and must use PKCE at exchange.
func (s *oauthService) RegisterClient(ctx context.Context, name string, redirectURIs []string, public bool) (*RegisteredClient, error) {
	if name == "" {
		return nil, domain.NewAuthError(domain.CodeInvalidRedirectURIs, "client_name is required")
	}

	var validURIs []string
	for _, raw := range redirectURIs {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			continue
		}
		validURIs = append(validURIs, raw)
	}
	if len(validURIs) == 0 {
		return nil, domain.NewAuthError(domain.CodeInvalidRedirectURIs, "at least one absolute redirect URI is required")
	}

	clientID, err := utils.SecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client id: %w", err)
	}
	var clientSecret, secretHash string
	if !public {
		clientSecret, err = utils.SecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate client secret: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash client secret: %w", err)
		}
		secretHash = string(hash)
	}

	client := &domain.OAuthClient{
		ID:           clientID,
		ClientID:     clientID,
		SecretHash:   secretHash,
		Name:         name,
		RedirectURIs: validURIs,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to persist client: %w", err)
	}

	s.logger.Info("OAuth client registered",
		zap.String("client_id", clientID),
		zap.String("client_name", name),
	)

	return &RegisteredClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Name:         name,
		RedirectURIs: validURIs,
	}, nil
}

// StoreCode opens a pending authorization code bound to a client/redirect
// pair. The code starts unbound (empty user id) until identity verification
// completes.
func (s *oauthService) StoreCode(ctx context.Context, code, clientID, redirectURI, codeChallenge, codeChallengeMethod string) error {
	client, err := s.clientRepo.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAuthError(domain.CodeInvalidClient, "unknown client %s", clientID)
		}
		return fmt.Errorf("failed to look up client: %w", err)
	}

	if !client.HasRedirectURI(redirectURI) {
		return domain.NewAuthError(domain.CodeInvalidRedirectURI, "redirect URI not registered for client")
	}

	authCode := &domain.AuthorizationCode{
		Code:                code,
		ClientID:            clientID,
		RedirectURI:         redirectURI,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		UserID:              "",
		ExpiresAt:           time.Now().Add(s.codeExpiry),
	}
	if err := s.authCodeRepo.Save(ctx, authCode, s.codeExpiry); err != nil {
		return fmt.Errorf("failed to persist authorization code: %w", err)
	}
	return nil
}

// CompleteAuthorization verifies the external identity token and binds the
// resulting subject to the pending code. ExpiresAt is left untouched.
func (s *oauthService) CompleteAuthorization(ctx context.Context, code, identityToken string) error {
	verification, err := s.verifier.Verify(ctx, identityToken)
	if err != nil {
		return err
	}

	authCode, err := s.authCodeRepo.Get(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAuthError(domain.CodeInvalidOrExpiredCode, "authorization code not found")
		}
		return fmt.Errorf("failed to look up authorization code: %w", err)
	}

	authCode.UserID = verification.SubjectID
	authCode.IdentityToken = identityToken
	authCode.UserData = &domain.VerifiedUser{
		Email:         verification.Email,
		Name:          verification.Name,
		WalletAddress: verification.WalletAddress,
	}

	ttl := time.Until(authCode.ExpiresAt)
	if err := s.authCodeRepo.Save(ctx, authCode, ttl); err != nil {
		return fmt.Errorf("failed to bind authorization code: %w", err)
	}

	s.logger.Info("authorization code bound",
		zap.String("user_id", verification.SubjectID),
		zap.String("client_id", authCode.ClientID),
	)
	return nil
}

// PeekCode is a read-only existence/binding probe used while the client
// polls for the asynchronous identity step.
func (s *oauthService) PeekCode(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	authCode, err := s.authCodeRepo.Get(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewAuthError(domain.CodeInvalidOrExpiredCode, "authorization code not found")
		}
		return nil, fmt.Errorf("failed to look up authorization code: %w", err)
	}
	return authCode, nil
}

// Exchange validates and consumes an authorization code, then mints an
// access token. Validation failures always carry their precise reason code;
// none of them is ever downgraded to a generic error.
func (s *oauthService) Exchange(ctx context.Context, req *ExchangeRequest) (*IssuedToken, error) {
	client, err := s.clientRepo.GetByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewAuthError(domain.CodeInvalidClient, "unknown client %s", req.ClientID)
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	authCode, err := s.authCodeRepo.Get(ctx, req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewAuthError(domain.CodeInvalidCode, "authorization code not found")
		}
		return nil, fmt.Errorf("failed to look up authorization code: %w", err)
	}

	if authCode.ClientID != req.ClientID || authCode.RedirectURI != req.RedirectURI {
		return nil, domain.NewAuthError(domain.CodeInvalidCode, "code does not match client or redirect URI")
	}

	if !authCode.IsBound() {
		return nil, domain.NewAuthError(domain.CodeUserNotBound, "identity verification not completed")
	}

	if authCode.IsExpired() {
		// Rejected, not deleted: deletion only happens on successful
		// consumption.
		return nil, domain.NewAuthError(domain.CodeCodeExpired, "authorization code expired")
	}

	if authCode.CodeChallenge != "" {
		if err := verifyPKCE(authCode.CodeChallenge, authCode.CodeChallengeMethod, req.CodeVerifier); err != nil {
			return nil, err
		}
	} else if client.IsConfidential() {
		if bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(req.ClientSecret)) != nil {
			return nil, domain.NewAuthError(domain.CodeInvalidClient, "client secret mismatch")
		}
	}

	// Consume the code. A second exchange attempt now fails the absence
	// check above.
	if err := s.authCodeRepo.Delete(ctx, req.Code); err != nil {
		return nil, fmt.Errorf("failed to consume authorization code: %w", err)
	}

	sessionID := ""
	if authCode.UserData != nil && authCode.UserData.Email != "" {
		if err := s.upsertUser(ctx, authCode.UserID, authCode.UserData); err != nil {
			return nil, fmt.Errorf("failed to persist identity: %w", err)
		}
		sessionID, err = s.sessions.Create(ctx, authCode.UserID, authCode.IdentityToken)
		if err != nil {
			return nil, fmt.Errorf("failed to open session: %w", err)
		}
	}

	accessToken, err := s.issuer.MintAccessToken(req.ClientID, authCode.UserID, s.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}

	record := &domain.OAuthAccessToken{
		Token:     accessToken,
		ExpiresAt: time.Now().Add(s.tokenExpiry),
		ClientID:  req.ClientID,
		UserID:    authCode.UserID,
		SessionID: sessionID,
		UserData:  authCode.UserData,
	}
	if err := s.tokenRepo.Save(ctx, record, s.tokenExpiry); err != nil {
		return nil, fmt.Errorf("failed to persist access token: %w", err)
	}

	s.logger.Info("access token issued",
		zap.String("client_id", req.ClientID),
		zap.String("user_id", authCode.UserID),
		zap.String("session_id", sessionID),
	)

	return &IssuedToken{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenExpiry.Seconds()),
	}, nil
}

// Authenticate resolves a presented bearer token to its stored record. Used
// by the resource-server middleware.
func (s *oauthService) Authenticate(ctx context.Context, tokenString string) (*domain.OAuthAccessToken, error) {
	if _, err := s.issuer.VerifyAccessToken(tokenString); err != nil {
		return nil, domain.NewAuthError(domain.CodeUnauthorized, "invalid access token")
	}

	record, err := s.tokenRepo.Get(ctx, tokenString)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewAuthError(domain.CodeUnauthorized, "unknown access token")
		}
		return nil, fmt.Errorf("failed to look up access token: %w", err)
	}
	if record.IsExpired() {
		return nil, domain.NewAuthError(domain.CodeUnauthorized, "access token expired")
	}
	return record, nil
}

// upsertUser creates the identity record on first OAuth completion and
// refreshes its attributes on later ones.
func (s *oauthService) upsertUser(ctx context.Context, userID string, data *domain.VerifiedUser) error {
	now := time.Now().UTC()

	existing, err := s.userRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	user := &domain.LuxBridgeUser{
		UserID:             userID,
		Email:              data.Email,
		Name:               data.Name,
		IdentityProviderID: userID,
		WalletAddress:      data.WalletAddress,
		CreatedAt:          now,
		LastActiveAt:       now,
	}
	if existing != nil {
		user.CreatedAt = existing.CreatedAt
	}
	return s.userRepo.Save(ctx, user)
}

// verifyPKCE checks the code verifier against the stored challenge per RFC
// 7636. S256 compares base64url(sha256(verifier)) byte for byte; plain (or
// an absent method) compares the verifier directly.
func verifyPKCE(challenge, method, verifier string) error {
	if verifier == "" {
		return domain.NewAuthError(domain.CodeMissingCodeVerifier, "code_verifier is required")
	}

	var computed string
	switch method {
	case "S256":
		hash := sha256.Sum256([]byte(verifier))
		computed = base64.RawURLEncoding.EncodeToString(hash[:])
	default:
		computed = verifier
	}

	if subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) != 1 {
		return domain.NewAuthError(domain.CodeInvalidCodeVerifier, "code verifier mismatch")
	}
	return nil
}
