// Package testutil builds migrated databases and stores for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/storage"
)

// SQLiteDSN returns a connection string for a database file under dir
func SQLiteDSN(dir string) string {
	return filepath.Join(dir, "filebox.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewDB opens a fresh SQLite database in a temp dir with all migrations applied
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Init(db.DriverSQLite, SQLiteDSN(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })

	require.NoError(t, db.RunMigrations(conn.DB, db.DriverSQLite))
	return conn
}

// NewStorage returns local storage rooted in a temp dir
func NewStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()

	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return st
}
