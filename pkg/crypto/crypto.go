package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const stateSize = 32

// GenerateRandomString returns stateSize random bytes encoded in url-safe base64.
func GenerateRandomString() (string, error) {
	b := make([]byte, stateSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// EqualState compares two oauth2 states in constant time. Empty states never match.
func EqualState(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
