package middleware

import (
	"net/http"

	"github.com/templui/filebox/internal/ctxkeys"
	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/service"
)

// AuthMiddleware resolves the bearer token or auth cookie to a user and adds
// it to the context. Requests without valid credentials continue anonymously.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := service.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserFromToken(r.Context(), token)
			if err != nil {
				// Stale cookie, drop it so the client stops sending it
				if _, cookieErr := r.Cookie(service.AuthCookieName); cookieErr == nil {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the request carries an authenticated user
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin ensures the authenticated user is an admin
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !ctxkeys.User(r.Context()).IsAdmin {
			httputil.RespondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActiveService rejects requests with 402 once the subscription has
// lapsed. Admins always pass so they can renew. The current status is added
// to the context.
func RequireActiveService(subscriptionService *service.SubscriptionService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sub, err := subscriptionService.Status(r.Context())
			if err != nil {
				httputil.HandleError(w, r, err)
				return
			}

			user := ctxkeys.User(r.Context())
			if !sub.Active && (user == nil || !user.IsAdmin) {
				httputil.RespondError(w, http.StatusPaymentRequired, "subscription expired")
				return
			}

			ctx := ctxkeys.WithSubscription(r.Context(), sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}
