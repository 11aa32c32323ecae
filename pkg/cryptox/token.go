package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenSize128 is 128 bits of entropy before encoding.
const TokenSize128 = 16

// GenerateHexToken creates a cryptographically secure random token of the
// given byte length, hex-encoded. Used for password-reset tokens.
func GenerateHexToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
