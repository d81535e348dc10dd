package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Querier is implemented by both *sqlx.DB and *sqlx.Tx so repositories work
// the same inside and outside a transaction.
type Querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type txContextKey struct{}

// WithTx stores a transaction in the context
func WithTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFrom returns the transaction stored in ctx, or nil
func TxFrom(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(*sqlx.Tx)
	return tx
}

// Conn returns the transaction carried by ctx if there is one, otherwise db
func Conn(ctx context.Context, db *sqlx.DB) Querier {
	if tx := TxFrom(ctx); tx != nil {
		return tx
	}
	return db
}

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TxManager runs functions inside a single database transaction
type TxManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

type txManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) TxManager {
	return &txManager{db: db}
}

// ExecTx begins a transaction, passes it to fn through the context and
// commits when fn returns nil. Any error rolls the whole unit back. Nested
// calls join the outer transaction.
func (m *txManager) ExecTx(ctx context.Context, fn TxFn) error {
	if TxFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Safe even if commit succeeds
	defer func() {
		rbErr := tx.Rollback()
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("rollback failed", "error", rbErr)
		}
	}()

	err = fn(WithTx(ctx, tx))
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
