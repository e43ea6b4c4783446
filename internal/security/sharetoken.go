package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewShareToken returns an unguessable urlsafe capability token. The
// database's unique constraint on tokens backstops the (negligible)
// collision chance.
func NewShareToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
