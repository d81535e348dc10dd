package handler

import (
	"net/http"
	"time"

	"github.com/templui/filebox/internal/ctxkeys"
	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// Login sets the auth cookie and also returns the token for API clients
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)
	user.PasswordHash = ""
	httputil.RespondJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiry, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	httputil.RespondJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, ctxkeys.User(r.Context()))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	user := ctxkeys.User(r.Context())
	err = h.userService.UpdatePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, okResponse{OK: true})
}
