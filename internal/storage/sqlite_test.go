package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSQLite(t *testing.T, path string) (*SQLiteStore, *sql.DB) {
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	s := NewSQLiteStore(db)
	require.NoError(t, s.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	return s, db
}

func TestSQLiteStore(t *testing.T) {
	s, _ := setupTestSQLite(t, filepath.Join(t.TempDir(), "storefront.db"))
	exerciseStore(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	ctx := context.Background()

	first, firstDB := setupTestSQLite(t, path)
	require.NoError(t, first.Set(ctx, KeyCart, []byte(`[{"sub_id":7}]`)))
	require.NoError(t, firstDB.Close())

	second, _ := setupTestSQLite(t, path)
	got, err := second.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"sub_id":7}]`, string(got))
}

func TestSQLiteStore_MigrationsAreIdempotent(t *testing.T) {
	s, _ := setupTestSQLite(t, filepath.Join(t.TempDir(), "storefront.db"))
	assert.NoError(t, s.RunMigrations())
}
