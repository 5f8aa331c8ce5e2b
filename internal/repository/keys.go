package repository

import (
	"fmt"

	"github.com/luxbridge-ai/luxbridge-auth/internal/domain"
)

// Key namespaces. Logical and store-agnostic: every persisted record lives
// under exactly one of these prefixes.
func clientKey(clientID string) string {
	return fmt.Sprintf("client:%s", clientID)
}

func authCodeKey(code string) string {
	return fmt.Sprintf("authcode:%s", code)
}

func oauthTokenKey(token string) string {
	return fmt.Sprintf("oauth_token:%s", token)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// sessionKeyPattern matches every session record, used by the explicit sweep.
const sessionKeyPattern = "session:*"

func userSessionsKey(identityID string) string {
	return fmt.Sprintf("user_sessions:%s", identityID)
}

func platformLinkKey(identityID string, platform domain.Platform) string {
	return fmt.Sprintf("platform_link:%s:%s", identityID, platform)
}

func identityKey(identityID string) string {
	return fmt.Sprintf("identity:%s", identityID)
}
