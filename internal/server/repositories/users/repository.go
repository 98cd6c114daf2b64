// Package users stores identities.
package users

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// Repository is the identity store.
//
// Lookups that find nothing return common.ErrorNotFound. Admitting a second
// active identity with the same email (case-insensitive) returns
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail only considers active identities.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// List returns every identity ordered by name.
	List(ctx context.Context) ([]*models.User, error)
}
