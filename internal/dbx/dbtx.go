// Package dbx holds the transaction plumbing shared by the SQL repositories.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the part of database/sql the repositories use. *sql.DB and *sql.Tx
// both satisfy it, so a repository can be bound to either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is a unit of work run against a transaction handle.
type TxFunc func(ctx context.Context, tx DBTX) error

// WithTx runs fn inside one transaction. It commits when fn returns nil and
// rolls back when fn fails or panics; a panic is re-raised after rollback.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// RetryTx runs WithTx up to attempts times, starting over while retryable
// reports the failure as transient (a serialization conflict, typically).
// fn must be safe to run again from scratch.
func RetryTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, attempts int, retryable func(error) bool, fn TxFunc) error {
	var err error
	for i := 0; i < max(attempts, 1); i++ {
		err = WithTx(ctx, db, opts, fn)
		if err == nil || !retryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}
