package library

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

func (r *PostgresRepository) Create(ctx context.Context, entry *models.LibraryEntry) (*models.LibraryEntry, error) {
	query :=
		`INSERT INTO library_entries (user_id, plant_id, nickname, last_watered, picture_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	var row struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := r.q.Get(ctx, &row, query,
		entry.UserID, entry.PlantID, entry.Nickname, entry.LastWatered, entry.PictureURL)
	if err != nil {
		return nil, fmt.Errorf("create library entry: %w", err)
	}

	entry.ID, entry.CreatedAt = row.ID, row.CreatedAt
	return entry, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.LibraryEntry, error) {
	query :=
		`SELECT e.id, e.user_id, e.plant_id, e.nickname, e.last_watered, e.picture_url, e.created_at,
		        s.id AS "plant.id", s.common_name AS "plant.common_name",
		        s.scientific_name AS "plant.scientific_name", s.genus AS "plant.genus",
		        s.family AS "plant.family", s.image_url AS "plant.image_url",
		        s.light AS "plant.light", s.water_frequency AS "plant.water_frequency"
		 FROM library_entries e
		 JOIN species s ON s.id = e.plant_id
		 WHERE e.user_id = $1
		 ORDER BY e.nickname`

	result := make([]models.LibraryEntry, 0)
	if err := r.q.Select(ctx, &result, query, userID); err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, entryID int64) (bool, error) {
	n, err := r.q.Exec(ctx,
		`DELETE FROM library_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return false, fmt.Errorf("delete library entry: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := r.q.Exec(ctx, `DELETE FROM library_entries WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete library: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) updateEntry(ctx context.Context, op, column string, userID, entryID int64, value any) error {
	// column is always one of the constants below, never client input.
	query := fmt.Sprintf(`UPDATE library_entries SET %s = $3 WHERE id = $1 AND user_id = $2`, column)

	n, err := r.q.Exec(ctx, query, entryID, userID, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, common.ErrorNotFound)
	}
	return nil
}

func (r *PostgresRepository) UpdateNickname(ctx context.Context, userID, entryID int64, nickname string) error {
	return r.updateEntry(ctx, "update nickname", "nickname", userID, entryID, nickname)
}

func (r *PostgresRepository) UpdateLastWatered(ctx context.Context, userID, entryID int64, day time.Time) error {
	return r.updateEntry(ctx, "update last watered", "last_watered", userID, entryID, day)
}

func (r *PostgresRepository) UpdatePicture(ctx context.Context, userID, entryID int64, pictureURL string) error {
	return r.updateEntry(ctx, "update picture", "picture_url", userID, entryID, pictureURL)
}

func (r *PostgresRepository) MarkAllWatered(ctx context.Context, userID int64, day time.Time) (int64, error) {
	n, err := r.q.Exec(ctx,
		`UPDATE library_entries SET last_watered = $2 WHERE user_id = $1`, userID, day)
	if err != nil {
		return 0, fmt.Errorf("mark all watered: %w", err)
	}
	return n, nil
}
