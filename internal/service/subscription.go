package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/repository"
)

// PaymentNotice is a verified payment reported by a provider webhook
type PaymentNotice struct {
	Provider     string
	InvoiceID    string
	ProviderTxID string
	Amount       int64
	Currency     string
	Days         int // 0 = configured renewal period
	Metadata     string
}

// SubscriptionService manages the service-wide usage window. The expiry is
// stored in settings as unix milliseconds.
type SubscriptionService struct {
	settings    repository.SettingRepository
	payments    repository.PaymentRepository
	txManager   db.TxManager
	trialDays   int
	renewalDays int
	now         func() time.Time
	logger      *slog.Logger
}

func NewSubscriptionService(
	settings repository.SettingRepository,
	payments repository.PaymentRepository,
	txManager db.TxManager,
	trialDays int,
	renewalDays int,
) *SubscriptionService {
	return &SubscriptionService{
		settings:    settings,
		payments:    payments,
		txManager:   txManager,
		trialDays:   trialDays,
		renewalDays: renewalDays,
		now:         time.Now,
		logger:      logger.Component("subscription"),
	}
}

// Seed stores the trial expiry if none is set yet
func (s *SubscriptionService) Seed(ctx context.Context) error {
	expiresAt := s.now().Add(time.Duration(s.trialDays) * 24 * time.Hour)

	created, err := s.settings.SetIfAbsent(ctx, model.SettingSubscriptionExpiresAt, formatMillis(expiresAt))
	if err != nil {
		return fmt.Errorf("failed to seed subscription: %w", err)
	}

	if created {
		s.logger.Info("seeded subscription", "expires_at", expiresAt.UTC())
	}
	return nil
}

func (s *SubscriptionService) Status(ctx context.Context) (*model.Subscription, error) {
	expiresAt, err := s.expiresAt(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewSubscription(expiresAt, s.now()), nil
}

func (s *SubscriptionService) IsActive(ctx context.Context) (bool, error) {
	sub, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	return sub.Active, nil
}

// SetExpiry overrides the expiry
func (s *SubscriptionService) SetExpiry(ctx context.Context, expiresAt time.Time) (*model.Subscription, error) {
	if expiresAt.IsZero() {
		return nil, domain.Validation("expiresAt is required")
	}

	err := s.settings.Set(ctx, model.SettingSubscriptionExpiresAt, formatMillis(expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to set subscription expiry: %w", err)
	}

	s.logger.Info("subscription expiry set", "expires_at", expiresAt.UTC())
	return model.NewSubscription(expiresAt, s.now()), nil
}

// Extend pushes the expiry forward by days, counting from now if it already lapsed
func (s *SubscriptionService) Extend(ctx context.Context, days int) (*model.Subscription, error) {
	if days <= 0 {
		return nil, domain.Validation("days must be positive")
	}

	var sub *model.Subscription
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.extend(ctx, days)
		return err
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// RecordPayment stores the payment and extends the subscription in one
// transaction. A payment already recorded under the same provider
// transaction or invoice id is reported as a duplicate and changes nothing.
func (s *SubscriptionService) RecordPayment(ctx context.Context, notice *PaymentNotice) (sub *model.Subscription, duplicate bool, err error) {
	if notice.ProviderTxID == "" && notice.InvoiceID == "" {
		return nil, false, domain.Validation("payment has no transaction or invoice id")
	}

	days := notice.Days
	if days <= 0 {
		days = s.renewalDays
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if notice.ProviderTxID != "" {
			_, err := s.payments.ByProviderTxID(ctx, notice.Provider, notice.ProviderTxID)
			if err == nil {
				return repository.ErrDuplicatePayment
			}
			if !errors.Is(err, repository.ErrPaymentNotFound) {
				return err
			}
		}

		now := s.now().UTC()
		payment := &model.Payment{
			ID:           uuid.New().String(),
			Provider:     notice.Provider,
			InvoiceID:    optional(notice.InvoiceID),
			ProviderTxID: optional(notice.ProviderTxID),
			Amount:       notice.Amount,
			Currency:     notice.Currency,
			Status:       model.PaymentStatusPaid,
			Days:         days,
			Metadata:     notice.Metadata,
			CreatedAt:    now,
			VerifiedAt:   &now,
		}

		err := s.payments.Create(ctx, payment)
		if err != nil {
			return err
		}

		sub, err = s.extend(ctx, days)
		return err
	})

	if errors.Is(err, repository.ErrDuplicatePayment) {
		paymentsTotal.WithLabelValues(notice.Provider, "duplicate").Inc()
		s.logger.Info("duplicate payment ignored", "provider", notice.Provider, "tx_id", notice.ProviderTxID, "invoice_id", notice.InvoiceID)
		sub, err = s.Status(ctx)
		return sub, true, err
	}
	if err != nil {
		paymentsTotal.WithLabelValues(notice.Provider, "error").Inc()
		return nil, false, fmt.Errorf("failed to record payment: %w", err)
	}

	paymentsTotal.WithLabelValues(notice.Provider, "recorded").Inc()
	s.logger.Info("payment recorded",
		"provider", notice.Provider,
		"tx_id", notice.ProviderTxID,
		"days", days,
		"expires_at", sub.ExpiresAt,
	)
	return sub, false, nil
}

func (s *SubscriptionService) Payments(ctx context.Context, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.payments.List(ctx, limit)
}

func (s *SubscriptionService) extend(ctx context.Context, days int) (*model.Subscription, error) {
	current, err := s.expiresAt(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	base := current
	if base.Before(now) {
		base = now
	}
	expiresAt := base.Add(time.Duration(days) * 24 * time.Hour)

	err = s.settings.Set(ctx, model.SettingSubscriptionExpiresAt, formatMillis(expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to store subscription expiry: %w", err)
	}

	return model.NewSubscription(expiresAt, now), nil
}

// expiresAt reads the stored expiry. A missing value counts as expired.
func (s *SubscriptionService) expiresAt(ctx context.Context) (time.Time, error) {
	value, err := s.settings.Get(ctx, model.SettingSubscriptionExpiresAt)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read subscription expiry: %w", err)
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		s.logger.Warn("invalid subscription expiry, treating as expired", "value", value)
		return time.Time{}, nil
	}

	return time.UnixMilli(millis), nil
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
