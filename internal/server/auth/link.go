package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// DefaultLinkValidity is how long an emailed link stays usable.
const DefaultLinkValidity = 24 * time.Hour

// LinkToken is the expiry and code embedded in an emailed link. Together with
// the binding fields the recipient echoes back (user id or email) it is all
// the server needs to check the link; nothing is stored.
type LinkToken struct {
	Expires int64
	Code    string
}

// LinkSigner issues and verifies expiring HMAC-SHA256 link tokens.
//
// The code is hex(HMAC(key, binding + "|" + expires)). Rotating the key
// invalidates every outstanding link.
type LinkSigner struct {
	key   []byte
	clock Clock
}

func NewLinkSigner(key []byte, clock Clock) (*LinkSigner, error) {
	if len(key) == 0 {
		return nil, common.ErrEmptySecret
	}
	if clock == nil {
		clock = SystemClock{}
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &LinkSigner{key: k, clock: clock}, nil
}

// ResetBinding pins a reset link to the account and its current password
// hash. Any password change alters the hash, so every reset link issued
// before it stops verifying.
func ResetBinding(userID, passwordHash string) string {
	return userID + "|" + passwordHash
}

// SignupBinding pins a signup link to the address it was sent to.
func SignupBinding(email string) string {
	return email
}

func (s *LinkSigner) mac(binding string, expires int64) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(binding))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Issue returns a token for binding that expires validity from now.
func (s *LinkSigner) Issue(binding string, validity time.Duration) LinkToken {
	expires := s.clock.Now().Add(validity).Unix()
	return LinkToken{Expires: expires, Code: s.mac(binding, expires)}
}

// Verify reports whether code was issued for binding and expires, and
// expires has not passed. binding must be rebuilt from the current state
// of the account, never from anything cached at issue time.
func (s *LinkSigner) Verify(binding string, expires int64, code string) bool {
	if s.clock.Now().Unix() > expires {
		return false
	}
	expected := s.mac(binding, expires)
	return hmac.Equal([]byte(expected), []byte(code))
}

// VerifyLink is Verify for raw URL path segments. Malformed or
// non-canonical expiry values ("+5", "007") fail closed.
func (s *LinkSigner) VerifyLink(binding, expires, code string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || strconv.FormatInt(exp, 10) != expires {
		return false
	}
	return s.Verify(binding, exp, code)
}
