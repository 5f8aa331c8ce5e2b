package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SecureToken returns an unguessable URL-safe random string built from n
// bytes of entropy.
func SecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
