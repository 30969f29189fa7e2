// Package users declares the account repository and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/flourish/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills ID and CreatedAt. A taken username or
	// email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetNotifications(ctx context.Context, id int64, enabled bool) error
	SetFunFacts(ctx context.Context, id int64, enabled bool) error

	// Delete removes the user row. Library rows must be removed first in
	// the same transaction.
	Delete(ctx context.Context, id int64) error
}
