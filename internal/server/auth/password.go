package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Accepted password lengths, in bytes. bcrypt refuses input longer than 72.
const (
	MinPasswordLength = 10
	MaxPasswordLength = 72
)

func checkLength(password string) error {
	if len(password) < MinPasswordLength {
		return common.ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return common.ErrPasswordTooLong
	}
	return nil
}

// ValidateNewPassword checks a password and its confirmation before hashing.
func ValidateNewPassword(password, repeat string) error {
	if err := checkLength(password); err != nil {
		return err
	}
	if password != repeat {
		return common.ErrPasswordMismatch
	}
	return nil
}

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if err := checkLength(password); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword compares a plaintext password with a stored hash.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomPasswordHash hashes a random password nobody will ever see.
// Deactivated accounts get one so they can no longer log in.
func RandomPasswordHash() (string, error) {
	pw, err := common.MakeRandHexString(common.RandomPasswordSize)
	if err != nil {
		return "", err
	}
	hash, err := HashPassword(pw)
	if err != nil {
		return "", errors.Join(common.ErrorInternal, err)
	}
	return hash, nil
}
