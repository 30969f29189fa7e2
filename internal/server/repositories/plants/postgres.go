package plants

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/flourish/internal/dbx"
	"github.com/dmitrijs2005/flourish/internal/server/models"
)

type PostgresRepository struct {
	q dbx.QueryExecutor
}

func NewPostgresRepository(q dbx.QueryExecutor) *PostgresRepository {
	return &PostgresRepository{q: q}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user text into an ILIKE pattern that matches the
// text literally anywhere in the column.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

func (r *PostgresRepository) Search(ctx context.Context, text string, limit int) ([]models.Plant, error) {
	query :=
		`SELECT id, common_name, scientific_name, genus, family, image_url, light, water_frequency
		 FROM species
		 WHERE scientific_name ILIKE $1 ESCAPE '\' OR common_name ILIKE $1 ESCAPE '\'
		 ORDER BY scientific_name
		 LIMIT $2`

	result := make([]models.Plant, 0)
	if err := r.q.Select(ctx, &result, query, containsPattern(text), limit); err != nil {
		return nil, fmt.Errorf("search species: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Plant, error) {
	query :=
		`SELECT id, common_name, scientific_name, genus, family, image_url, light, water_frequency
		 FROM species
		 WHERE id = $1`

	plant := &models.Plant{}
	if err := r.q.Get(ctx, plant, query, id); err != nil {
		return nil, fmt.Errorf("get species: %w", err)
	}
	return plant, nil
}
