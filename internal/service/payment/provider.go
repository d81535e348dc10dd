package payment

import (
	"context"
	"net/http"

	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/service"
)

// Provider sells renewal periods for the service subscription
type Provider interface {
	// CreateCheckoutURL starts a hosted checkout for one renewal period
	CreateCheckoutURL(ctx context.Context, user *model.User) (string, error)

	// HandleWebhook verifies and applies a provider event
	HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error

	// Name returns the provider name (e.g., "polar", "stripe")
	Name() string
}

// Recorder is the part of the subscription service the providers need
type Recorder interface {
	RecordPayment(ctx context.Context, notice *service.PaymentNotice) (*model.Subscription, bool, error)
}
