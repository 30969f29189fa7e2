// Package library stores users' personal plant libraries.
package library

import (
	"context"
	"time"

	"github.com/dmitrijs2005/flourish/internal/server/models"
)

// Repository manages library entries. Every operation is scoped to the
// owning user; an entry id belonging to someone else behaves as absent.
type Repository interface {
	// Create inserts entry and fills ID and CreatedAt. An unknown user or
	// species yields common.ErrorReferenceMissing; a nickname already used
	// by this user yields common.ErrorAlreadyExists.
	Create(ctx context.Context, entry *models.LibraryEntry) (*models.LibraryEntry, error)

	// ListByUser returns the user's entries joined with catalog data.
	ListByUser(ctx context.Context, userID int64) ([]models.LibraryEntry, error)

	// Delete removes one entry and reports whether it existed.
	Delete(ctx context.Context, userID, entryID int64) (bool, error)
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)

	UpdateNickname(ctx context.Context, userID, entryID int64, nickname string) error
	UpdateLastWatered(ctx context.Context, userID, entryID int64, day time.Time) error
	UpdatePicture(ctx context.Context, userID, entryID int64, pictureURL string) error

	// MarkAllWatered sets last_watered for every entry of the user and
	// returns how many rows changed.
	MarkAllWatered(ctx context.Context, userID int64, day time.Time) (int64, error)
}
