package handler

import (
	"net/http"

	"github.com/templui/filebox/internal/ctxkeys"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/service"
)

// UserHandler serves the admin-only account management endpoints
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	user, err := h.userService.Create(r.Context(), &service.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if current := ctxkeys.User(r.Context()); current != nil && current.ID == id {
		httputil.HandleError(w, r, &domain.ConflictError{Message: "cannot delete your own account"})
		return
	}

	err := h.userService.Delete(r.Context(), id)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, okResponse{OK: true})
}
