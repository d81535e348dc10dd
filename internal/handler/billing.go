package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/templui/filebox/internal/ctxkeys"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/service"
	"github.com/templui/filebox/internal/service/payment"
)

const maxWebhookBytes = 1 << 20

type BillingHandler struct {
	subscriptionService *service.SubscriptionService
	paymentService      payment.Provider // nil when payments are disabled
}

func NewBillingHandler(subscriptionService *service.SubscriptionService, paymentService payment.Provider) *BillingHandler {
	return &BillingHandler{
		subscriptionService: subscriptionService,
		paymentService:      paymentService,
	}
}

func (h *BillingHandler) Status(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptionService.Status(r.Context())
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, sub)
}

// updateSubscriptionRequest sets the expiry outright or extends it by days
type updateSubscriptionRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
	Days      *int       `json:"days"`
}

func (h *BillingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriptionRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	switch {
	case req.ExpiresAt != nil && req.Days != nil:
		err = domain.Validation("provide either expiresAt or days, not both")
	case req.ExpiresAt != nil:
		sub, setErr := h.subscriptionService.SetExpiry(r.Context(), *req.ExpiresAt)
		if setErr == nil {
			httputil.RespondJSON(w, http.StatusOK, sub)
			return
		}
		err = setErr
	case req.Days != nil:
		sub, extendErr := h.subscriptionService.Extend(r.Context(), *req.Days)
		if extendErr == nil {
			httputil.RespondJSON(w, http.StatusOK, sub)
			return
		}
		err = extendErr
	default:
		err = domain.Validation("expiresAt or days is required")
	}

	httputil.HandleError(w, r, err)
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	checkoutURL, err := h.paymentService.CreateCheckoutURL(r.Context(), user)
	if err != nil {
		slog.Error("failed to create checkout", "error", err, "user_id", user.ID, "provider", h.paymentService.Name())
		httputil.RespondError(w, http.StatusBadGateway, "failed to create checkout session")
		return
	}

	slog.Info("checkout created", "user_id", user.ID, "provider", h.paymentService.Name())
	httputil.RespondJSON(w, http.StatusOK, checkoutResponse{URL: checkoutURL})
}

// Webhook answers 400 for payloads that fail verification and 500 for
// processing errors so the provider retries them.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		httputil.RespondError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	err = h.paymentService.HandleWebhook(r.Context(), payload, r.Header)
	if errors.Is(err, payment.ErrInvalidSignature) {
		slog.Warn("rejected webhook", "error", err, "provider", h.paymentService.Name())
		httputil.RespondError(w, http.StatusBadRequest, "invalid webhook signature")
		return
	}
	if err != nil {
		slog.Error("failed to handle webhook", "error", err, "provider", h.paymentService.Name())
		httputil.RespondError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *BillingHandler) Payments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	payments, err := h.subscriptionService.Payments(r.Context(), limit)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, payments)
}
