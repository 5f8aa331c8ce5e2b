package domain

import "time"

// LuxBridgeUser is the central, platform-agnostic identity record. Created
// once per first successful OAuth completion and never deleted by this
// service; LastActiveAt is refreshed by explicit activity pings.
type LuxBridgeUser struct {
	UserID             string    `json:"user_id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	IdentityProviderID string    `json:"identity_provider_id"`
	WalletAddress      string    `json:"wallet_address,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	LastActiveAt       time.Time `json:"last_active_at"`
}
