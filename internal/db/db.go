package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Init opens the store and verifies the connection. The returned handle is
// owned by the caller and must be closed with Close at shutdown.
func Init(driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == DriverSQLite {
		err := os.MkdirAll(filepath.Dir(sqlitePath(connection)), 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Snapshot writes a consistent copy of a SQLite database to dest using
// VACUUM INTO. Other drivers are not supported.
func Snapshot(ctx context.Context, db *sqlx.DB, dest string) error {
	if db.DriverName() != DriverSQLite {
		return fmt.Errorf("snapshot not supported for driver %q", db.DriverName())
	}

	err := os.Remove(dest)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear snapshot target: %w", err)
	}

	_, err = db.ExecContext(ctx, `VACUUM INTO $1`, dest)
	if err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// sqlitePath strips the "file:" scheme and query options from a SQLite DSN
func sqlitePath(connection string) string {
	path := strings.TrimPrefix(connection, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
