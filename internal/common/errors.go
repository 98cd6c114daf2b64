// Package common defines shared sentinel errors and small helpers used across
// gatekeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	// ErrTxConflict marks a transaction aborted by a concurrent writer; the
	// unit of work may be retried as a whole.
	ErrTxConflict = errors.New("transaction conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorInvalidCredentials = errors.New("wrong username or password")
	ErrorValidation         = errors.New("validation error")

	// Signed link errors. A link is either valid or not; the reason is never exposed.
	ErrInvalidLink       = errors.New("invalid or expired link")
	ErrAlreadyRegistered = errors.New("there is already a user with this email address registered")

	// Input errors.
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUnknownRole      = errors.New("unknown role")

	// Mail delivery failed; any state change already made stays committed.
	ErrMailFailed = errors.New("could not send email")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrEmptySecret  = errors.New("secret key must not be empty")
)
