package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	polargo "github.com/polarsource/polar-go"
	"github.com/polarsource/polar-go/models/components"
	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/templui/filebox/internal/config"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/service"
)

type PolarProvider struct {
	cfg      *config.Config
	recorder Recorder
	client   *polargo.Polar
	logger   *slog.Logger
}

func NewPolarProvider(cfg *config.Config, recorder Recorder) *PolarProvider {
	log := logger.Component("polar")

	var serverOption polargo.SDKOption
	if cfg.PolarSandboxMode {
		serverOption = polargo.WithServer(polargo.ServerSandbox)
		log.Info("polar using sandbox mode", "app_env", cfg.AppEnv)
	} else {
		serverOption = polargo.WithServer(polargo.ServerProduction)
		log.Info("polar using production mode", "app_env", cfg.AppEnv)
	}

	client := polargo.New(
		polargo.WithSecurity(cfg.PolarAPIKey),
		serverOption,
	)

	return &PolarProvider{
		cfg:      cfg,
		recorder: recorder,
		client:   client,
		logger:   log,
	}
}

func (p *PolarProvider) Name() string {
	return model.ProviderPolar
}

func (p *PolarProvider) CreateCheckoutURL(ctx context.Context, user *model.User) (string, error) {
	successURL := fmt.Sprintf("%s/?checkout=success", p.cfg.AppURL)
	returnURL := fmt.Sprintf("%s/", p.cfg.AppURL)

	metadata := map[string]components.CheckoutCreateMetadata{
		"user_id": components.CreateCheckoutCreateMetadataStr(user.ID),
		"days":    components.CreateCheckoutCreateMetadataStr(strconv.Itoa(p.cfg.SubscriptionRenewalDays)),
	}

	res, err := p.client.Checkouts.Create(ctx, components.CheckoutCreate{
		Products:   []string{p.cfg.PolarProductID},
		SuccessURL: polargo.String(successURL),
		ReturnURL:  polargo.String(returnURL),
		Metadata:   metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout: %w", err)
	}

	if res == nil || res.Checkout == nil {
		return "", fmt.Errorf("checkout response is nil")
	}

	p.logger.Info("polar checkout created", "user_id", user.ID, "checkout_id", res.Checkout.ID)
	return res.Checkout.URL, nil
}

func (p *PolarProvider) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	wh, err := standardwebhooks.NewWebhookRaw([]byte(p.cfg.PolarWebhookSecret))
	if err != nil {
		return fmt.Errorf("failed to create webhook verifier: %w", err)
	}

	httpHeaders := http.Header{}
	httpHeaders.Set("webhook-id", headers.Get("webhook-id"))
	httpHeaders.Set("webhook-timestamp", headers.Get("webhook-timestamp"))
	httpHeaders.Set("webhook-signature", headers.Get("webhook-signature"))

	err = wh.Verify(payload, httpHeaders)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	err = json.Unmarshal(payload, &event)
	if err != nil {
		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	p.logger.Info("polar webhook received", "event_type", event.Type, "webhook_id", headers.Get("webhook-id"))

	switch event.Type {
	case "order.paid":
		return p.handleOrderPaid(ctx, event.Data)
	default:
		p.logger.Debug("polar webhook event ignored", "event_type", event.Type)
		return nil
	}
}

func (p *PolarProvider) handleOrderPaid(ctx context.Context, data json.RawMessage) error {
	var order struct {
		ID          string         `json:"id"`
		TotalAmount int64          `json:"total_amount"`
		Currency    string         `json:"currency"`
		InvoiceID   string         `json:"invoice_number"`
		Metadata    map[string]any `json:"metadata"`
	}

	err := json.Unmarshal(data, &order)
	if err != nil {
		return fmt.Errorf("failed to parse order: %w", err)
	}

	metadata := make(map[string]string, len(order.Metadata))
	for k, v := range order.Metadata {
		metadata[k] = fmt.Sprint(v)
	}

	notice := &service.PaymentNotice{
		Provider:     model.ProviderPolar,
		ProviderTxID: order.ID,
		InvoiceID:    order.InvoiceID,
		Amount:       order.TotalAmount,
		Currency:     order.Currency,
		Days:         metadataDays(metadata),
		Metadata:     string(data),
	}

	sub, duplicate, err := p.recorder.RecordPayment(ctx, notice)
	if err != nil {
		return err
	}

	p.logger.Info("polar order paid",
		"order_id", order.ID,
		"user_id", metadata["user_id"],
		"duplicate", duplicate,
		"expires_at", sub.ExpiresAt,
	)
	return nil
}
