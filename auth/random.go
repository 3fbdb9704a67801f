package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns 32 random bytes hex-encoded, used for one-time email links.
func RandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
