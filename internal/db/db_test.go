package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/headcount/internal/db"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headcount.db")

	d, err := db.Open(path)
	require.NoError(t, err)
	defer d.Close()

	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	// Reopening skips already-applied migrations.
	d2, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, d2.Close())
}

func TestOpen_MigrationFailure(t *testing.T) {
	// A directory cannot be opened as a database file, so the first
	// migration statement fails and Open must return the error.
	d, err := db.Open(t.TempDir())
	require.Error(t, err)
	assert.Nil(t, d)
}
