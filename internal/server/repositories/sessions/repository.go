// Package sessions declares the server-side store that maps opaque session
// identifiers carried in the session cookie to the identity they belong to.
package sessions

import (
	"context"
	"time"
)

// Repository defines operations for opening, resolving and revoking sessions.
type Repository interface {
	// Create binds sessionID to userID for ttl.
	Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error

	// Get returns the user ID bound to sessionID, or common.ErrorNotFound when
	// the session is absent or expired.
	Get(ctx context.Context, sessionID string) (string, error)

	// Delete revokes a single session. Deleting an absent session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteUser revokes every session that belongs to userID.
	DeleteUser(ctx context.Context, userID string) error
}
