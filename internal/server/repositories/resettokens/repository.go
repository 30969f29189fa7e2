// Package resettokens declares the repository for single-use password
// reset tokens. Only SHA-256 digests of tokens are stored.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/flourish/internal/server/models"
)

// Repository defines operations for issuing, consuming and purging tokens.
type Repository interface {
	// Create stores a token digest for userID that expires at expiresAt.
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error

	// Consume atomically marks an unused, unexpired token as used at now and
	// returns its owner. Any other state yields common.ErrInvalidToken.
	Consume(ctx context.Context, tokenHash string, now time.Time) (int64, error)

	// Find returns the stored row regardless of state, or common.ErrorNotFound.
	Find(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)

	// DeleteStale removes tokens that are used or expired at now.
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}
