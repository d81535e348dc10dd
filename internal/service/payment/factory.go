package payment

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/templui/filebox/internal/config"
	"github.com/templui/filebox/internal/model"
)

// ErrDisabled is returned when PAYMENT_PROVIDER is "none"
var ErrDisabled = errors.New("payments are disabled")

// NewProvider creates a payment provider based on configuration
func NewProvider(cfg *config.Config, recorder Recorder) (Provider, error) {
	provider := cfg.PaymentProvider

	slog.Info("initializing payment provider", "provider", provider)

	switch provider {
	case model.ProviderNone, "":
		return nil, ErrDisabled

	case model.ProviderPolar:
		if cfg.PolarAPIKey == "" {
			return nil, fmt.Errorf("POLAR_API_KEY is required when using Polar provider")
		}
		if cfg.PolarProductID == "" {
			return nil, fmt.Errorf("POLAR_PRODUCT_ID is required when using Polar provider")
		}
		return NewPolarProvider(cfg, recorder), nil

	case model.ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY is required when using Stripe provider")
		}
		if cfg.StripeWebhookSecret == "" {
			return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when using Stripe provider")
		}
		return NewStripeProvider(cfg, recorder), nil

	default:
		return nil, fmt.Errorf("unknown payment provider: %s (supported: none, polar, stripe)", provider)
	}
}

// ErrInvalidSignature marks a webhook whose signature could not be verified
var ErrInvalidSignature = errors.New("invalid webhook signature")

// metadataDays reads the renewal length carried through checkout metadata.
// Zero means the configured default.
func metadataDays(metadata map[string]string) int {
	days, err := strconv.Atoi(metadata["days"])
	if err != nil || days < 0 {
		return 0
	}
	return days
}
