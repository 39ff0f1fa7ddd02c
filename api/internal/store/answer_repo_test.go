package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when TEST_DATABASE_URL is set.
func TestAnswerRepoRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	repo := NewAnswerRepo(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	hash := "test-" + time.Now().Format("150405.000000")
	_, err = repo.Find(ctx, hash, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, hash, sample))
	got, err := repo.Find(ctx, hash, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	_, err = repo.PurgeOlderThan(ctx, 0)
	assert.Error(t, err)
	_, err = db.ExecContext(ctx, `delete from answers_cache where task_hash = $1`, hash)
	require.NoError(t, err)
}
