package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	typOAuthAccess    = "oauth_access"
	typPlatformBearer = "platform_bearer"
)

// Issuer mints and verifies the two kinds of bearer credentials this service
// deals in: OAuth access tokens handed to MCP clients, and short-lived bearer
// tokens consumed by the mock platform APIs. The two kinds use separate
// signing keys and carry distinct typ claims, so a token from one namespace
// never verifies in the other.
type Issuer struct {
	issuer         string
	oauthSecret    []byte
	platformSecret []byte
}

// AccessClaims are the verified claims of an OAuth access token.
type AccessClaims struct {
	ClientID string
	UserID   string
	JTI      string
	Exp      time.Time
}

// PlatformClaims are the verified claims of a platform bearer token.
type PlatformClaims struct {
	Platform string
	UserID   string
	Email    string
	Exp      time.Time
}

// NewIssuer creates an Issuer. The two secrets must differ; config validation
// enforces that before this is reached.
func NewIssuer(issuer, oauthSecret, platformSecret string) *Issuer {
	return &Issuer{
		issuer:         issuer,
		oauthSecret:    []byte(oauthSecret),
		platformSecret: []byte(platformSecret),
	}
}

// MintAccessToken creates an OAuth access token string for an MCP client.
func (i *Issuer) MintAccessToken(clientID, userID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":       i.issuer,
		"typ":       typOAuthAccess,
		"client_id": clientID,
		"sub":       userID,
		"jti":       uuid.New().String(),
		"iat":       now.Unix(),
		"exp":       now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.oauthSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates an OAuth access token string and returns its
// claims. Expired or cross-namespace tokens are rejected.
func (i *Issuer) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims, err := i.parse(tokenString, i.oauthSecret, typOAuthAccess)
	if err != nil {
		return nil, err
	}

	clientID, _ := claims["client_id"].(string)
	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	exp, ok := claims["exp"].(float64)
	if clientID == "" || !ok {
		return nil, fmt.Errorf("malformed access token claims")
	}

	return &AccessClaims{
		ClientID: clientID,
		UserID:   sub,
		JTI:      jti,
		Exp:      time.Unix(int64(exp), 0),
	}, nil
}

// MintPlatformToken creates a bearer token for a downstream platform API.
func (i *Issuer) MintPlatformToken(platform, platformUserID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      i.issuer,
		"typ":      typPlatformBearer,
		"platform": platform,
		"sub":      platformUserID,
		"email":    email,
		"iat":      now.Unix(),
		"exp":      now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.platformSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign platform token: %w", err)
	}
	return signed, nil
}

// VerifyPlatformToken validates a platform bearer token for the given
// platform.
func (i *Issuer) VerifyPlatformToken(tokenString, platform string) (*PlatformClaims, error) {
	claims, err := i.parse(tokenString, i.platformSecret, typPlatformBearer)
	if err != nil {
		return nil, err
	}

	tokenPlatform, _ := claims["platform"].(string)
	if tokenPlatform != platform {
		return nil, fmt.Errorf("token issued for platform %q, not %q", tokenPlatform, platform)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	exp, ok := claims["exp"].(float64)
	if sub == "" || !ok {
		return nil, fmt.Errorf("malformed platform token claims")
	}

	return &PlatformClaims{
		Platform: tokenPlatform,
		UserID:   sub,
		Email:    email,
		Exp:      time.Unix(int64(exp), 0),
	}, nil
}

func (i *Issuer) parse(tokenString string, secret []byte, wantTyp string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != wantTyp {
		return nil, fmt.Errorf("invalid token type")
	}

	return claims, nil
}
