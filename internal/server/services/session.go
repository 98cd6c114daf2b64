package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// checkAgainstDummy burns one bcrypt comparison so unknown emails take as
// long to reject as wrong passwords.
func checkAgainstDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = auth.RandomPasswordHash()
	})
	_ = auth.CheckPassword(dummyHash, password)
}

// Login verifies email and password of an active identity. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		checkAgainstDummy(password)
		return nil, common.ErrorInvalidCredentials
	}
	user, err := s.repomanager.Users().GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			checkAgainstDummy(password)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, s.internal(ctx, "login", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorInvalidCredentials
	}
	return user, nil
}

// StartSession opens a session slot for user and returns the signed token
// to put in the session cookie.
func (s *AccountService) StartSession(ctx context.Context, user *models.User) (string, error) {
	sid, err := common.MakeRandHexString(common.SessionIDSize)
	if err != nil {
		return "", s.internal(ctx, "session id", err)
	}
	if err := s.repomanager.Sessions().Create(ctx, sid, user.ID, s.sessionValidity); err != nil {
		return "", s.internal(ctx, "session create", err)
	}
	token, err := auth.GenerateToken(sid, s.sessionSecret, s.sessionValidity)
	if err != nil {
		return "", s.internal(ctx, "session token", err)
	}
	return token, nil
}

// ResolveSession maps a session token to the active identity it belongs
// to. Every failure is ErrorUnauthorized; the caller treats the request as
// anonymous.
func (s *AccountService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	sid, err := auth.GetSessionIDFromToken(token, s.sessionSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	userID, err := s.repomanager.Sessions().Get(ctx, sid)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "session lookup failed", "error", err)
		}
		return nil, common.ErrorUnauthorized
	}
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil || !user.Active {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// EndSession revokes the session behind token. Unknown or invalid tokens
// are ignored.
func (s *AccountService) EndSession(ctx context.Context, token string) error {
	sid, err := auth.GetSessionIDFromToken(token, s.sessionSecret)
	if err != nil {
		return nil
	}
	if err := s.repomanager.Sessions().Delete(ctx, sid); err != nil {
		return s.internal(ctx, "session delete", err)
	}
	return nil
}
