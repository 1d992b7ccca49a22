package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the entropy of every bearer secret we mint (256 bits).
const TokenBytes = 32

// GenerateRandomBytes generates cryptographically secure random bytes
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("reading random bytes: %w", err)
	}
	return b, nil
}

// GenerateToken generates a hex-encoded random token suitable for magic
// links, sessions and share links. The token doubles as the lookup key.
func GenerateToken() (string, error) {
	b, err := GenerateRandomBytes(TokenBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
