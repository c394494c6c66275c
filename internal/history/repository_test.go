package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgjobs-insights/internal/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db)
}

func TestInsertAndList(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.QueryRecord{
		Kind:       "heatmap",
		SQL:        "WITH joined AS (SELECT 1) SELECT 1",
		Params:     `["Open"]`,
		Status:     domain.QueryStatusOK,
		DurationMS: 12,
	}))
	require.NoError(t, repo.Insert(ctx, &domain.QueryRecord{
		Kind:       "percentile_cap",
		SQL:        "SELECT quantile_cont(salary_mid, ?)",
		Params:     `[0.95]`,
		Status:     domain.QueryStatusError,
		Error:      "table missing",
		DurationMS: 3,
	}))

	records, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "percentile_cap", records[0].Kind)
	assert.Equal(t, domain.QueryStatusError, records[0].Status)
	assert.Equal(t, "table missing", records[0].Error)
	assert.Equal(t, "heatmap", records[1].Kind)
	assert.False(t, records[0].CreatedAt.IsZero())
	assert.NotZero(t, records[0].ID)
}

func TestListHonorsLimit(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, &domain.QueryRecord{
			Kind:   "detail_sample",
			SQL:    "SELECT 1",
			Status: domain.QueryStatusOK,
		}))
	}

	records, err := repo.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestListDefaultsLimit(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.Insert(context.Background(), &domain.QueryRecord{
		Kind:   "filter_options",
		SQL:    "SELECT 1",
		Status: domain.QueryStatusOK,
	}))

	records, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening runs goose again over an already-migrated store.
	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
