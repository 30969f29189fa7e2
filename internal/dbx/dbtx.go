// Package dbx is the query execution layer repositories are built on.
// It runs parameterized statements against a pooled connection (or an open
// transaction), releases the connection on every exit path and turns driver
// failures into a typed *Error classified against the sentinels in common.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// Postgres SQLSTATE codes we classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// QueryExecutor is the contract repositories depend on. Statement text and
// bound parameters always travel separately.
type QueryExecutor interface {
	// Select runs a query and scans all rows into dest (pointer to slice).
	Select(ctx context.Context, dest any, query string, args ...any) error
	// Get runs a query and scans exactly one row into dest.
	// No row yields an error matching common.ErrorNotFound.
	Get(ctx context.Context, dest any, query string, args ...any) error
	// Exec runs a statement and returns the affected row count.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

// Transactor runs fn inside one database transaction. fn receives an
// executor bound to that transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, q QueryExecutor) error) error
}

// Error is the typed failure returned by the executor.
type Error struct {
	Op    string
	Query string
	Err   error
	kind  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.kind, e.Err}
}

func wrap(op, query string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Query: query, Err: err, kind: classify(err)}
}

func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return common.ErrorAlreadyExists
		case pgForeignKeyViolation:
			return common.ErrorReferenceMissing
		}
	}
	return common.ErrorStorageUnavailable
}

// Executor implements QueryExecutor and Transactor over a sqlx handle.
type Executor struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// NewExecutor wraps an open pool. driverName selects the bind style
// sqlx uses (e.g. "pgx", "sqlite").
func NewExecutor(db *sql.DB, driverName string) *Executor {
	x := sqlx.NewDb(db, driverName)
	return &Executor{db: x, ext: x}
}

func (e *Executor) Select(ctx context.Context, dest any, query string, args ...any) error {
	return wrap("select", query, sqlx.SelectContext(ctx, e.ext, dest, query, args...))
}

func (e *Executor) Get(ctx context.Context, dest any, query string, args ...any) error {
	return wrap("get", query, sqlx.GetContext(ctx, e.ext, dest, query, args...))
}

func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrap("exec", query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("exec", query, err)
	}
	return n, nil
}

// WithTx begins a transaction, runs fn with a transactional executor, and
// then commits on success or rolls back on error/panic. Panics are rethrown.
// Nested calls on a transactional executor reuse the open transaction.
func (e *Executor) WithTx(ctx context.Context, fn func(ctx context.Context, q QueryExecutor) error) (err error) {
	if _, inTx := e.ext.(*sqlx.Tx); inTx {
		return fn(ctx, e)
	}

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin", "", err)
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
		if cerr := tx.Commit(); cerr != nil {
			err = wrap("commit", "", cerr)
		}
	}()

	err = fn(ctx, &Executor{db: e.db, ext: tx})
	return err
}

// Ping checks that a pooled connection can be acquired.
func (e *Executor) Ping(ctx context.Context) error {
	return wrap("ping", "", e.db.PingContext(ctx))
}
