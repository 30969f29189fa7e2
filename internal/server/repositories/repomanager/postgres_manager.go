// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/flourish/internal/dbx"
	"github.com/dmitrijs2005/flourish/internal/server/migrations"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/library"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/plants"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Bind returns all repositories bound to q.
func (m *PostgresRepositoryManager) Bind(q dbx.QueryExecutor) *Repositories {
	return &Repositories{
		Users:       users.NewPostgresRepository(q),
		Plants:      plants.NewPostgresRepository(q),
		Library:     library.NewPostgresRepository(q),
		ResetTokens: resettokens.NewPostgresRepository(q),
	}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// TxUnitOfWork implements UnitOfWork on top of a dbx.Transactor.
type TxUnitOfWork struct {
	tx dbx.Transactor
	rm RepositoryManager
}

func NewUnitOfWork(tx dbx.Transactor, rm RepositoryManager) *TxUnitOfWork {
	return &TxUnitOfWork{tx: tx, rm: rm}
}

func (u *TxUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return u.tx.WithTx(ctx, func(ctx context.Context, q dbx.QueryExecutor) error {
		return fn(ctx, u.rm.Bind(q))
	})
}
