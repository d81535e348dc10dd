package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/templui/filebox/internal/config"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/service"
)

type StripeProvider struct {
	cfg      *config.Config
	recorder Recorder
	logger   *slog.Logger
}

func NewStripeProvider(cfg *config.Config, recorder Recorder) *StripeProvider {
	// Set Stripe API key
	stripe.Key = cfg.StripeSecretKey

	log := logger.Component("stripe")
	log.Info("stripe provider initialized", "app_env", cfg.AppEnv)

	return &StripeProvider{
		cfg:      cfg,
		recorder: recorder,
		logger:   log,
	}
}

func (s *StripeProvider) Name() string {
	return model.ProviderStripe
}

// CreateCheckoutURL opens a one-off payment session for one renewal period
func (s *StripeProvider) CreateCheckoutURL(ctx context.Context, user *model.User) (string, error) {
	if s.cfg.StripePriceID == "" {
		return "", fmt.Errorf("no stripe price configured")
	}

	successURL := fmt.Sprintf("%s/?checkout=success&session_id={CHECKOUT_SESSION_ID}", s.cfg.AppURL)
	cancelURL := fmt.Sprintf("%s/?checkout=cancelled", s.cfg.AppURL)

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(user.ID),
		Metadata: map[string]string{
			"user_id": user.ID,
			"days":    strconv.Itoa(s.cfg.SubscriptionRenewalDays),
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("stripe checkout created", "user_id", user.ID, "session_id", sess.ID)
	return sess.URL, nil
}

func (s *StripeProvider) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	signature := headers.Get("Stripe-Signature")

	// Stripe's API versions are backwards compatible for the fields read here
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	s.logger.Info("stripe webhook received", "event_type", event.Type, "event_id", event.ID)

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return s.handleCheckoutSessionCompleted(ctx, event.Data.Raw)
	default:
		s.logger.Debug("stripe webhook event ignored", "event_type", event.Type)
		return nil
	}
}

func (s *StripeProvider) handleCheckoutSessionCompleted(ctx context.Context, data json.RawMessage) error {
	var checkoutSession struct {
		ID            string            `json:"id"`
		PaymentStatus string            `json:"payment_status"`
		AmountTotal   int64             `json:"amount_total"`
		Currency      string            `json:"currency"`
		Invoice       *string           `json:"invoice"`
		Metadata      map[string]string `json:"metadata"`
	}

	err := json.Unmarshal(data, &checkoutSession)
	if err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	if checkoutSession.PaymentStatus != string(stripe.CheckoutSessionPaymentStatusPaid) {
		s.logger.Info("stripe checkout not paid yet, skipping", "session_id", checkoutSession.ID, "payment_status", checkoutSession.PaymentStatus)
		return nil
	}

	notice := &service.PaymentNotice{
		Provider:     model.ProviderStripe,
		ProviderTxID: checkoutSession.ID,
		Amount:       checkoutSession.AmountTotal,
		Currency:     checkoutSession.Currency,
		Days:         metadataDays(checkoutSession.Metadata),
		Metadata:     string(data),
	}
	if checkoutSession.Invoice != nil {
		notice.InvoiceID = *checkoutSession.Invoice
	}

	sub, duplicate, err := s.recorder.RecordPayment(ctx, notice)
	if err != nil {
		return err
	}

	s.logger.Info("stripe checkout completed",
		"session_id", checkoutSession.ID,
		"user_id", checkoutSession.Metadata["user_id"],
		"duplicate", duplicate,
		"expires_at", sub.ExpiresAt,
	)
	return nil
}
