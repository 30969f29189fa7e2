// Package plants provides read access to the species catalog.
package plants

import (
	"context"

	"github.com/dmitrijs2005/flourish/internal/server/models"
)

// Repository reads the species catalog. The catalog itself is populated by
// an external import job.
type Repository interface {
	// Search returns at most limit species whose scientific or common name
	// contains text, case-insensitively. No match is an empty slice.
	Search(ctx context.Context, text string, limit int) ([]models.Plant, error)
	// GetByID returns common.ErrorNotFound for an unknown species.
	GetByID(ctx context.Context, id int64) (*models.Plant, error)
}
