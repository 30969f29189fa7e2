package plants

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plantColumns = []string{"id", "common_name", "scientific_name", "genus", "family", "image_url", "light", "water_frequency"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(dbx.NewExecutor(db, "pgx")), mock
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%rose%", containsPattern("rose"))
	assert.Equal(t, `%100\%\_a\\b%`, containsPattern(`100%_a\b`))
	assert.Equal(t, "%%", containsPattern(""))
}

func TestSearch_Matches(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+species\s+WHERE\s+scientific_name\s+ILIKE\s+\$1.*OR\s+common_name\s+ILIKE\s+\$1.*LIMIT\s+\$2$`
	mock.ExpectQuery(q).
		WithArgs("%ficus%", 50).
		WillReturnRows(sqlmock.NewRows(plantColumns).
			AddRow(int64(1), "Weeping fig", "Ficus benjamina", "Ficus", "Moraceae", "http://img/1", 6, 5).
			AddRow(int64(2), "Rubber plant", "Ficus elastica", "Ficus", "Moraceae", "", -1, -1))

	got, err := repo.Search(context.Background(), "ficus", 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ficus benjamina", got[0].ScientificName)
	assert.Equal(t, 5, got[0].WaterFrequency)
	assert.Equal(t, -1, got[1].Light)
}

func TestSearch_NoMatchIsEmptyNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+species`).
		WithArgs("%zzz%", 10).
		WillReturnRows(sqlmock.NewRows(plantColumns))

	got, err := repo.Search(context.Background(), "zzz", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+species`).WillReturnError(errors.New("db down"))

	_, err := repo.Search(context.Background(), "a", 10)
	assert.ErrorIs(t, err, common.ErrorStorageUnavailable)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+species\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(plantColumns).
			AddRow(int64(9), "Snake plant", "Dracaena trifasciata", "Dracaena", "Asparagaceae", "", 4, 2))
	mock.ExpectQuery(q).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(plantColumns))

	got, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Dracaena", got.Genus)

	_, err = repo.GetByID(context.Background(), 10)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
