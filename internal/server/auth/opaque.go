package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// RefreshTokenBytes is the entropy of an opaque refresh token. 32 bytes gives
// 256 bits of randomness before encoding.
const RefreshTokenBytes = 32

// NewOpaqueToken generates a cryptographically random URL-safe token string.
// The raw value is both what the client holds and the store's lookup key.
func NewOpaqueToken() (string, error) {
	b := make([]byte, RefreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
