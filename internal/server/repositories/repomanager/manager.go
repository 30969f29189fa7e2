package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/flourish/internal/dbx"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/library"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/plants"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/users"
)

// Repositories is one consistent set of repositories bound to the same
// executor (the pool, or a single open transaction).
type Repositories struct {
	Users       users.Repository
	Plants      plants.Repository
	Library     library.Repository
	ResetTokens resettokens.Repository
}

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Bind(q dbx.QueryExecutor) *Repositories
}

// UnitOfWork runs fn with repositories that all share one transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}
