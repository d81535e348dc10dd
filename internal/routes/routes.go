package routes

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/filebox/internal/app"
	"github.com/templui/filebox/internal/handler"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/middleware"
)

// SetupRoutes builds the API. ctx bounds background work owned by the
// middleware such as the rate limiter cleanup.
func SetupRoutes(ctx context.Context, app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.UserService)
	users := handler.NewUserHandler(app.UserService)
	folders := handler.NewFolderHandler(app.FolderService)
	files := handler.NewFileHandler(app.FileService, app.Streamer, app.Cfg.MaxUploadBytes(), app.Cfg.InlineMaxBytes())
	billing := handler.NewBillingHandler(app.SubscriptionService, app.PaymentService)
	export := handler.NewExportHandler(app.DB)

	// Per-route guards
	requireAuth := middleware.RequireAuth
	requireAdmin := middleware.RequireAdmin
	active := middleware.RequireActiveService(app.SubscriptionService)
	rateLimiter := middleware.RateLimitAuth(ctx)

	// Authenticated routes that stop working once the subscription lapses
	gated := func(h http.HandlerFunc) http.HandlerFunc {
		return requireAuth(active(h))
	}

	mux := http.NewServeMux()

	// ============================================================================
	// OPS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// ============================================================================
	// AUTH & USERS
	// ============================================================================

	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/me", requireAuth(auth.Me))
	mux.HandleFunc("POST /api/auth/password", rateLimiter(requireAuth(auth.ChangePassword)))

	mux.HandleFunc("GET /api/users", requireAdmin(users.List))
	mux.HandleFunc("POST /api/users", requireAdmin(users.Create))
	mux.HandleFunc("DELETE /api/users/{id}", requireAdmin(users.Delete))

	// ============================================================================
	// SUBSCRIPTION & PAYMENTS
	// ============================================================================

	mux.HandleFunc("GET /api/subscription", requireAuth(billing.Status))
	mux.HandleFunc("PUT /api/subscription", requireAdmin(billing.Update))
	mux.HandleFunc("GET /api/subscription/payments", requireAdmin(billing.Payments))
	if app.PaymentService != nil {
		mux.HandleFunc("POST /api/subscription/checkout", requireAuth(billing.CreateCheckout))
		mux.HandleFunc("POST /webhooks/payment", billing.Webhook)
	}

	// ============================================================================
	// FOLDERS & FILES
	// ============================================================================

	mux.HandleFunc("GET /api/folders", gated(folders.List))
	mux.HandleFunc("POST /api/folders", gated(folders.Create))
	mux.HandleFunc("PATCH /api/folders/{id}", gated(folders.Update))
	mux.HandleFunc("DELETE /api/folders/{id}", gated(folders.Delete))

	mux.HandleFunc("GET /api/files", gated(files.List))
	mux.HandleFunc("POST /api/files", gated(files.Create))
	mux.HandleFunc("POST /api/files/multi", gated(files.CreateMany))
	mux.HandleFunc("POST /api/files/move-bulk", gated(files.MoveBulk))
	mux.HandleFunc("GET /api/files/{id}", gated(files.Get))
	mux.HandleFunc("PATCH /api/files/{id}", gated(files.Rename))
	mux.HandleFunc("PATCH /api/files/{id}/move", gated(files.Move))
	mux.HandleFunc("DELETE /api/files/{id}", gated(files.Delete))

	mux.HandleFunc("GET /api/export", requireAdmin(export.Export))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger.Component("http")),
		middleware.RequestLogging,
		middleware.Config(app.Cfg),
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.AuthMiddleware(app.AuthService),
		middleware.Metrics, // innermost, reads the matched route pattern
	)

	return handler
}
