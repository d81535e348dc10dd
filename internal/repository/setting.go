package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filebox/internal/db"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
)

// SettingRepository is a small key/value table for service-wide state
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)
}

type settingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	query := `SELECT value FROM settings WHERE key = $1`

	err := db.Conn(ctx, r.db).GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO settings (key, value) VALUES ($1, $2)
	          ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	_, err := db.Conn(ctx, r.db).ExecContext(ctx, query, key, value)
	return err
}

// SetIfAbsent stores value only when key has no value yet and reports whether it did
func (r *settingRepository) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	query := `INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT(key) DO NOTHING`

	result, err := db.Conn(ctx, r.db).ExecContext(ctx, query, key, value)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
