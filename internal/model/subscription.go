package model

import (
	"time"
)

const (
	SettingSubscriptionExpiresAt = "subscription_expires_at"
)

const (
	ProviderNone   = "none"
	ProviderPolar  = "polar"
	ProviderStripe = "stripe"
)

const (
	PaymentStatusPaid = "paid"
)

type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Subscription is the service-wide usage window stored in settings.
type Subscription struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Active    bool      `json:"active"`
	DaysLeft  int       `json:"daysLeft"`
}

func NewSubscription(expiresAt, now time.Time) *Subscription {
	sub := &Subscription{ExpiresAt: expiresAt}
	if expiresAt.After(now) {
		sub.Active = true
		sub.DaysLeft = int(expiresAt.Sub(now).Hours() / 24)
	}
	return sub
}

type Payment struct {
	ID           string     `db:"id" json:"id"`
	Provider     string     `db:"provider" json:"provider"`
	InvoiceID    *string    `db:"invoice_id" json:"invoiceId,omitempty"`
	ProviderTxID *string    `db:"provider_tx_id" json:"providerTxId,omitempty"`
	Amount       int64      `db:"amount" json:"amount"`
	Currency     string     `db:"currency" json:"currency"`
	Status       string     `db:"status" json:"status"`
	Days         int        `db:"days" json:"days"`
	Metadata     string     `db:"metadata" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	VerifiedAt   *time.Time `db:"verified_at" json:"verifiedAt,omitempty"`
}
