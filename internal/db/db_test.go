package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")

	db, err := OpenMigrated(path)
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	err = db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	require.NoError(t, err)
	assert.Subset(t, tables, []string{"games", "ownership_transfers", "participants", "sessions", "teams", "tournaments"})

	// Second run is a no-op
	require.NoError(t, RunMigrations(db.DB))

	var fk int
	require.NoError(t, db.Get(&fk, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, fk)
}
