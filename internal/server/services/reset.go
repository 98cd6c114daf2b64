package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mailer"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

func (s *AccountService) sendResetLink(ctx context.Context, user *models.User) error {
	return s.notify(ctx, mailer.TemplateRecoveryLink, []string{user.Email},
		"password recovery instructions",
		mailer.Data{Name: user.Name, Link: s.ResetLink(user)})
}

// RequestReset mails a recovery link if email belongs to an active
// identity. Unknown addresses succeed silently; malformed ones are
// rejected.
func (s *AccountService) RequestReset(ctx context.Context, email string) error {
	addr, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.repomanager.Users().GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return s.internal(ctx, "reset request", err)
	}
	return s.sendResetLink(ctx, user)
}

func (s *AccountService) loadResetTarget(ctx context.Context, repo users.Repository, uid, expires, mac string) (*models.User, error) {
	user, err := repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.LinkVerified(purposeReset, false)
			return nil, common.ErrInvalidLink
		}
		return nil, s.internal(ctx, "reset lookup", err)
	}
	if !user.Active || !s.verify(ctx, purposeReset, auth.ResetBinding(user.ID, user.PasswordHash), expires, mac) {
		return nil, common.ErrInvalidLink
	}
	return user, nil
}

// CheckReset reports whether a recovery link is currently usable.
func (s *AccountService) CheckReset(ctx context.Context, uid, expires, mac string) (*models.User, error) {
	return s.loadResetTarget(ctx, s.repomanager.Users(), uid, expires, mac)
}

// CompleteReset sets a new password through a recovery link. The link is
// re-verified inside the transaction, and storing the new hash invalidates
// it together with every other outstanding link for the account.
func (s *AccountService) CompleteReset(ctx context.Context, uid, expires, mac, password, repeat string) (*models.User, error) {
	var updated *models.User
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err := s.loadResetTarget(ctx, repo, uid, expires, mac)
		if err != nil {
			return err
		}
		if err := auth.ValidateNewPassword(password, repeat); err != nil {
			return err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		if err := repo.Update(ctx, user); err != nil {
			return s.internal(ctx, "reset update", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "password reset", "user_id", updated.ID)
	_ = s.notify(ctx, mailer.TemplatePasswordReset, []string{updated.Email},
		"password reset", mailer.Data{Name: updated.Name})
	return updated, nil
}
