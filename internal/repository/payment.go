package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/model"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrDuplicatePayment = errors.New("payment already recorded")
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	ByProviderTxID(ctx context.Context, provider, txID string) (*model.Payment, error)
	List(ctx context.Context, limit int) ([]*model.Payment, error)
}

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, provider, invoice_id, provider_tx_id, amount, currency, status, days, metadata, created_at, verified_at`

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := db.Conn(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.Provider,
		payment.InvoiceID,
		payment.ProviderTxID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.Days,
		payment.Metadata,
		payment.CreatedAt,
		payment.VerifiedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicatePayment
	}

	return err
}

func (r *paymentRepository) ByProviderTxID(ctx context.Context, provider, txID string) (*model.Payment, error) {
	payment := &model.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider = $1 AND provider_tx_id = $2`

	err := db.Conn(ctx, r.db).GetContext(ctx, payment, query, provider, txID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// List returns the most recent payments first
func (r *paymentRepository) List(ctx context.Context, limit int) ([]*model.Payment, error) {
	payments := []*model.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC LIMIT $1`

	err := db.Conn(ctx, r.db).SelectContext(ctx, &payments, query, limit)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
