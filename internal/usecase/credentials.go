package usecase

import (
	"crypto/rand"
	"encoding/base64"
)

const credentialBytes = 24

// NewOpaqueCredential returns a throwaway initial password. The member never
// sees it; they set their own through the recovery link in the welcome email.
func NewOpaqueCredential() (string, error) {
	buf := make([]byte, credentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
