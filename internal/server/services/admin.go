package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

func (s *AccountService) ListUsers(ctx context.Context) ([]*models.User, error) {
	list, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list users", err)
	}
	return list, nil
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "get user", err)
	}
	return user, nil
}

// SendResetFor mails a recovery link to the user with id on behalf of an
// administrator.
func (s *AccountService) SendResetFor(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !user.Active {
		return common.ErrorNotFound
	}
	return s.sendResetLink(ctx, user)
}

// modifyUser loads the identity with id, applies change and stores it in one
// unit of work, so the write never carries fields read before a concurrent
// commit.
func (s *AccountService) modifyUser(ctx context.Context, op, id string, change func(*models.User)) (*models.User, error) {
	var updated *models.User
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return s.internal(ctx, op+" lookup", err)
		}
		change(user)
		if err := repo.Update(ctx, user); err != nil {
			return s.internal(ctx, op, err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *AccountService) ChangeRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if _, err := models.ParseRole(role.String()); err != nil {
		return nil, err
	}
	user, err := s.modifyUser(ctx, "change role", id, func(u *models.User) {
		u.Role = role
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "role changed", "user_id", user.ID, "role", role.String())
	return user, nil
}

// ChangeRoleByEmail is ChangeRole for an active identity looked up by email.
func (s *AccountService) ChangeRoleByEmail(ctx context.Context, email string, role models.Role) (*models.User, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users().GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "get user", err)
	}
	return s.ChangeRole(ctx, user.ID, role)
}

// CreateUser registers an identity directly, bypassing the emailed link.
// Used to bootstrap administrators.
func (s *AccountService) CreateUser(ctx context.Context, email, name, password string, role models.Role) (*models.User, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, common.ErrorValidation
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users().Create(ctx, &models.User{
		Email:        addr,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrAlreadyRegistered
		}
		return nil, s.internal(ctx, "create user", err)
	}
	return user, nil
}

// Deactivate anonymizes the account and revokes all of its sessions. The
// record is kept; its email address becomes free for a new signup.
func (s *AccountService) Deactivate(ctx context.Context, id string) (*models.User, error) {
	hash, err := auth.RandomPasswordHash()
	if err != nil {
		return nil, s.internal(ctx, "deactivate hash", err)
	}
	user, err := s.modifyUser(ctx, "deactivate", id, func(u *models.User) {
		u.Deactivate(hash, s.anonymizedEmailDomain)
	})
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Sessions().DeleteUser(ctx, user.ID); err != nil {
		return nil, s.internal(ctx, "deactivate sessions", err)
	}
	s.logger.Info(ctx, "user deactivated", "user_id", user.ID)
	return user, nil
}
