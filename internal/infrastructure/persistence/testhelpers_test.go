package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/infrastructure/config"
	"github.com/taxpayers/backend/internal/infrastructure/migration"
)

// newTestDatabase opens a migrated SQLite database in a temp directory
func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "taxpayers.db")

	m, err := migration.Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := NewDatabase(&config.DatabaseConfig{Path: path, LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}
