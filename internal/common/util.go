package common

import (
	"crypto/rand"
	"encoding/hex"
)

// Sizes, in random bytes, of generated secrets.
const (
	SessionIDSize      = 32
	RandomPasswordSize = 16
)

// MakeRandHexString returns size random bytes hex encoded, so the result is
// twice as long as size. Session ids and throwaway passwords come from here.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b. Used to drop plaintext passwords read from a
// terminal once they have been handed over.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
