package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomSecret returns size random bytes hex-encoded, for use as a
// per-process signing key when none is configured. Sessions signed with it
// do not survive a restart.
func RandomSecret(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Wipe zeroes b, e.g. a password read from the terminal once it is hashed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
