package users

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/dbx"
	"github.com/dmitrijs2005/flourish/internal/server/models"
)

type PostgresRepository struct {
	q dbx.QueryExecutor
}

func NewPostgresRepository(q dbx.QueryExecutor) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const selectUser = `SELECT id, username, email, password_hash, notifications_enabled, fun_facts_enabled, created_at
		 FROM users
		 `

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, notifications_enabled, fun_facts_enabled)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	var row struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := r.q.Get(ctx, &row, query,
		user.Username, user.Email, user.PasswordHash, user.NotificationsEnabled, user.FunFactsEnabled)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.ID, user.CreatedAt = row.ID, row.CreatedAt
	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	if err := r.q.Get(ctx, user, selectUser+where, arg); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "WHERE id = $1", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "WHERE username = $1", username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "WHERE lower(email) = lower($1)", email)
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.q.Get(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.Get(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// updateOne runs an UPDATE/DELETE that must hit exactly one user row.
func (r *PostgresRepository) updateOne(ctx context.Context, op, query string, args ...any) error {
	n, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, common.ErrorNotFound)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updateOne(ctx, "update password",
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepository) SetNotifications(ctx context.Context, id int64, enabled bool) error {
	return r.updateOne(ctx, "set notifications",
		`UPDATE users SET notifications_enabled = $2 WHERE id = $1`, id, enabled)
}

func (r *PostgresRepository) SetFunFacts(ctx context.Context, id int64, enabled bool) error {
	return r.updateOne(ctx, "set fun facts",
		`UPDATE users SET fun_facts_enabled = $2 WHERE id = $1`, id, enabled)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.updateOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}
