package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mailer"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

// AccountUpdate is a self-service settings change. Empty fields are left
// untouched; CurrentPassword is always required.
type AccountUpdate struct {
	CurrentPassword string
	Email           string
	Name            string
	NewPassword     string
	RepeatPassword  string
}

// UpdateAccount applies upd to the actor's own account. The record is read
// and written inside one unit of work so a concurrent reset cannot be
// overwritten with a stale password hash. Email and password changes are
// announced by mail after the commit; a failed notification does not undo
// the change.
func (s *AccountService) UpdateAccount(ctx context.Context, actor *models.User, upd AccountUpdate) (*models.User, error) {
	var newEmail, newHash string
	if upd.Email != "" {
		addr, err := normalizeEmail(upd.Email)
		if err != nil {
			return nil, err
		}
		newEmail = addr
	}
	if upd.NewPassword != "" {
		if err := auth.ValidateNewPassword(upd.NewPassword, upd.RepeatPassword); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(upd.NewPassword)
		if err != nil {
			return nil, err
		}
		newHash = hash
	}
	name := strings.TrimSpace(upd.Name)

	var (
		updated  *models.User
		oldEmail string
	)
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err := repo.GetByID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return s.internal(ctx, "account lookup", err)
		}
		if !user.Active || !auth.CheckPassword(user.PasswordHash, upd.CurrentPassword) {
			return common.ErrorInvalidCredentials
		}

		oldEmail = ""
		if newEmail != "" && newEmail != strings.ToLower(user.Email) {
			oldEmail = user.Email
			user.Email = newEmail
		}
		if name != "" {
			user.Name = name
		}
		if newHash != "" {
			user.PasswordHash = newHash
		}

		if err := repo.Update(ctx, user); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrorAlreadyExists
			}
			return s.internal(ctx, "account update", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	recipients := []string{updated.Email}
	if oldEmail != "" {
		recipients = []string{oldEmail, updated.Email}
		_ = s.notify(ctx, mailer.TemplateEmailChanged, recipients, "email changed",
			mailer.Data{Name: updated.Name, Email: updated.Email})
	}
	if newHash != "" {
		_ = s.notify(ctx, mailer.TemplatePasswordChanged, recipients, "password changed",
			mailer.Data{Name: updated.Name})
	}

	return updated, nil
}
