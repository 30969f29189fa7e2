package resettokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/dbx"
	"github.com/dmitrijs2005/flourish/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.QueryExecutor.
type PostgresRepository struct {
	q dbx.QueryExecutor
}

// NewPostgresRepository constructs a repository bound to q.
func NewPostgresRepository(q dbx.QueryExecutor) *PostgresRepository {
	return &PostgresRepository{q: q}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.q.Exec(ctx, query, userID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

// Consume relies on a single conditional UPDATE so two concurrent resets
// with the same token cannot both succeed.
func (r *PostgresRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	query := `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING user_id
	`
	var userID int64
	if err := r.q.Get(ctx, &userID, query, tokenHash, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrInvalidToken
		}
		return 0, fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (r *PostgresRepository) Find(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`
	token := &models.PasswordResetToken{}
	if err := r.q.Get(ctx, token, query, tokenHash); err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return token, nil
}

func (r *PostgresRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE used_at IS NOT NULL OR expires_at <= $1
	`
	n, err := r.q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete stale reset tokens: %w", err)
	}
	return n, nil
}
