package domain

import "time"

// Platform identifies one of the fixed set of downstream asset platforms.
type Platform string

const (
	PlatformSplint      Platform = "splint"
	PlatformMasterworks Platform = "masterworks"
	PlatformRealT       Platform = "realt"
)

// SupportedPlatforms is the fixed set of downstream platforms. Every session
// carries a slot for each, nil until linked.
var SupportedPlatforms = []Platform{PlatformSplint, PlatformMasterworks, PlatformRealT}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformSplint:
		return "Splint Invest"
	case PlatformMasterworks:
		return "Masterworks"
	case PlatformRealT:
		return "RealT"
	}
	return string(p)
}

// IsSupportedPlatform reports whether p names a known platform.
func IsSupportedPlatform(p Platform) bool {
	for _, s := range SupportedPlatforms {
		if s == p {
			return true
		}
	}
	return false
}

// LinkStatus is the health of a platform link.
type LinkStatus string

const (
	// LinkActive means the stored platform credential validated on last use.
	LinkActive LinkStatus = "active"
	// LinkExpired means the downstream platform answered 401 during bulk
	// validation; the credential needs to be refreshed by the user.
	LinkExpired LinkStatus = "expired"
	// LinkInvalid means a non-401 failure while validating or using the
	// credential.
	LinkInvalid LinkStatus = "invalid"
)

// PlatformLink is stored proof that an identity has validated credentials
// against a specific platform. It lives under its own {identity, platform}
// key independent of any session and is mirrored into owning sessions.
type PlatformLink struct {
	Platform       Platform   `json:"platform"`
	IdentityID     string     `json:"identity_id"`
	PlatformUserID string     `json:"platform_user_id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	AccessToken    string     `json:"access_token"`
	TokenExpiry    *time.Time `json:"token_expiry,omitempty"`
	LinkedAt       time.Time  `json:"linked_at"`
	LastUsedAt     time.Time  `json:"last_used_at"`
	Status         LinkStatus `json:"status"`
}

// IsTokenExpired reports whether the downstream credential's own expiry has
// passed. Links without a known expiry never report expired here.
func (l *PlatformLink) IsTokenExpired() bool {
	return l.TokenExpiry != nil && time.Now().After(*l.TokenExpiry)
}

// AuthSession binds one verified identity to zero-or-more platform links for
// the lifetime of a login ceremony. Platforms carries a slot for every
// supported platform, nil until linked.
type AuthSession struct {
	SessionID             string                     `json:"session_id"`
	IdentityID            string                     `json:"identity_id"`
	ExternalIdentityToken string                     `json:"external_identity_token"`
	Platforms             map[Platform]*PlatformLink `json:"platforms"`
	CreatedAt             time.Time                  `json:"created_at"`
	ExpiresAt             time.Time                  `json:"expires_at"`
}

// NewPlatformMap returns the all-nil platform slot map for a fresh session.
func NewPlatformMap() map[Platform]*PlatformLink {
	m := make(map[Platform]*PlatformLink, len(SupportedPlatforms))
	for _, p := range SupportedPlatforms {
		m[p] = nil
	}
	return m
}

// IsExpired checks the session's validity window.
func (s *AuthSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
