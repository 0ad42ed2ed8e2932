package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const linkTokenBytes = 18

// NewLinkToken returns an unguessable URL-safe token. Possession of the token
// is the only credential a participant needs, so it must come from a CSPRNG.
func NewLinkToken() (string, error) {
	buf := make([]byte, linkTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
