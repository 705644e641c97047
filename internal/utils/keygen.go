package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateAPIKey generates a random API key with the given prefix.
// Format: prefix_randomhex
func GenerateAPIKey(prefix string) (string, error) {
	b := make([]byte, 32) // 64 char hex
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateAdminKey generates an admin key: cc_admin_xxx
func GenerateAdminKey() (string, error) {
	return GenerateAPIKey("cc_admin")
}

// HashAPIKey returns a bcrypt hash suitable for ADMIN_API_KEY.
func HashAPIKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
