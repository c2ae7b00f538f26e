package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const testSchema = "blog_test"

// testDB is a connection to the database named by TEST_DATABASE_URL with
// the blog tables created in their own schema.
type testDB struct {
	Pool *pgxpool.Pool
}

func newTestDB(t *testing.T) *testDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err, "Failed to parse TEST_DATABASE_URL")
	cfg.ConnConfig.RuntimeParams["search_path"] = testSchema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+testSchema)
	require.NoError(t, err, "Failed to create test schema")
	require.NoError(t, Migrate(ctx, pool))

	db := &testDB{Pool: pool}
	db.cleanup(t)
	return db
}

func (db *testDB) cleanup(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		"TRUNCATE comments, posts, categories, media_files, user_roles, roles, users CASCADE")
	require.NoError(t, err, "Failed to truncate tables")
}
