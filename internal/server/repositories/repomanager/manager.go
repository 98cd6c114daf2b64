// Package repomanager wires the user and session repositories to a concrete
// storage backend and exposes the transaction and migration hooks the
// services need.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

// TxFunc runs against a users.Repository bound to an open transaction.
type TxFunc func(ctx context.Context, users users.Repository) error

type RepositoryManager interface {
	Users() users.Repository
	Sessions() sessions.Repository

	// WithTx runs fn atomically: all user writes made through the repository
	// passed to fn commit together or not at all.
	WithTx(ctx context.Context, fn TxFunc) error

	RunMigrations(ctx context.Context) error
	Close() error
}
