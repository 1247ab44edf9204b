package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// GenerateSecureToken returns length random bytes, URL-safe base64 encoded.
// It backs session secrets, CSRF tokens and CSP nonces.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("token length must be positive")
	}
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
