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

// RequestSignup mails a registration link to a new address, or a pointer to
// password recovery if the address already has an account. Both cases look
// the same to the caller.
func (s *AccountService) RequestSignup(ctx context.Context, email string) error {
	addr, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	existing, err := s.repomanager.Users().GetByEmail(ctx, addr)
	switch {
	case err == nil:
		return s.notify(ctx, mailer.TemplateRegistrationExisting, []string{addr}, "registration",
			mailer.Data{Name: existing.Name, Link: s.baseURL + "/reset"})
	case errors.Is(err, common.ErrorNotFound):
		return s.notify(ctx, mailer.TemplateRegistrationEmail, []string{addr}, "registration",
			mailer.Data{Email: addr, Link: s.SignupLink(addr)})
	default:
		return s.internal(ctx, "signup request", err)
	}
}

// CheckSignup reports whether a registration link is usable for email.
func (s *AccountService) CheckSignup(ctx context.Context, email, expires, mac string) error {
	if !s.verify(ctx, purposeSignup, auth.SignupBinding(email), expires, mac) {
		return common.ErrInvalidLink
	}
	_, err := s.repomanager.Users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		return common.ErrAlreadyRegistered
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return s.internal(ctx, "signup check", err)
	}
}

// CompleteSignup creates the identity behind a registration link. The
// existence check and the insert share one transaction so two completions
// of the same link cannot both succeed.
func (s *AccountService) CompleteSignup(ctx context.Context, email, expires, mac, name, password, repeat string) (*models.User, error) {
	if !s.verify(ctx, purposeSignup, auth.SignupBinding(email), expires, mac) {
		return nil, common.ErrInvalidLink
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrorValidation
	}
	if err := auth.ValidateNewPassword(password, repeat); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return common.ErrAlreadyRegistered
		} else if !errors.Is(err, common.ErrorNotFound) {
			return s.internal(ctx, "signup lookup", err)
		}

		u, err := repo.Create(ctx, &models.User{
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			Role:         models.RoleUser,
			Active:       true,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrAlreadyRegistered
			}
			return s.internal(ctx, "signup create", err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	_ = s.notify(ctx, mailer.TemplateRegistrationOK, []string{created.Email},
		"welcome", mailer.Data{Name: created.Name})
	return created, nil
}
