package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", "filebox.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := Init(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { Close(conn) })

	require.NoError(t, RunMigrations(conn.DB, DriverSQLite))
	return conn
}

func countUsers(t *testing.T, conn *sqlx.DB) int {
	t.Helper()

	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM users`))
	return n
}

func insertUser(ctx context.Context, conn *sqlx.DB, id string) error {
	_, err := Conn(ctx, conn).ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, is_admin, created_at) VALUES ($1, $2, 'x', FALSE, CURRENT_TIMESTAMP)`,
		id, "user-"+id)
	return err
}

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "./data/filebox.db", sqlitePath("file:./data/filebox.db?_pragma=foreign_keys(1)"))
	assert.Equal(t, "/tmp/x.db", sqlitePath("/tmp/x.db"))
}

func TestTxManager(t *testing.T) {
	conn := openSQLite(t)
	tx := NewTxManager(conn)
	ctx := t.Context()

	t.Run("commit", func(t *testing.T) {
		err := tx.ExecTx(ctx, func(ctx context.Context) error {
			require.NotNil(t, TxFrom(ctx))
			return insertUser(ctx, conn, "1")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countUsers(t, conn))
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.ExecTx(ctx, func(ctx context.Context) error {
			if err := insertUser(ctx, conn, "2"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countUsers(t, conn))
	})

	t.Run("nested calls join", func(t *testing.T) {
		err := tx.ExecTx(ctx, func(ctx context.Context) error {
			outer := TxFrom(ctx)
			return tx.ExecTx(ctx, func(ctx context.Context) error {
				assert.Same(t, outer, TxFrom(ctx))
				if err := insertUser(ctx, conn, "3"); err != nil {
					return err
				}
				return errors.New("inner failed")
			})
		})
		require.Error(t, err)
		assert.Equal(t, 1, countUsers(t, conn), "inner failure rolls back the outer transaction")
	})

	assert.Nil(t, TxFrom(ctx))
}

func TestSnapshot(t *testing.T) {
	conn := openSQLite(t)
	ctx := t.Context()
	require.NoError(t, insertUser(ctx, conn, "1"))

	dest := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, Snapshot(ctx, conn, dest))
	require.NoError(t, Snapshot(ctx, conn, dest), "an existing target is replaced")

	copyDB, err := Init(DriverSQLite, dest)
	require.NoError(t, err)
	defer Close(copyDB)

	assert.Equal(t, 1, countUsers(t, copyDB))
}

func TestMigrateDown(t *testing.T) {
	conn := openSQLite(t)

	require.NoError(t, MigrateDown(conn.DB, DriverSQLite))

	var n int
	err := conn.Get(&n, `SELECT COUNT(*) FROM payments`)
	assert.Error(t, err, "payments table is dropped by the latest down migration")

	require.NoError(t, RunMigrations(conn.DB, DriverSQLite))
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM payments`))
}
