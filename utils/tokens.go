package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// linkTokenBytes is the raw entropy of a public-link token. Tokens double as
// bearer credentials, so they come from the CSPRNG; 32 bytes keeps them far
// past the 128-bit floor.
const linkTokenBytes = 32

// GenerateLinkToken returns a URL-safe random token.
func GenerateLinkToken() (string, error) {
	buf := make([]byte, linkTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
