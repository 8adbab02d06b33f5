package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type UserService interface {
	CheckUser(ctx context.Context, email string) (*api.CheckUserResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	VerifyOTP(ctx context.Context, v domain.OTPVerification) (*domain.AuthResult, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Current(ctx context.Context) (*domain.User, error)
	Update(ctx context.Context, update map[string]any) (*domain.User, error)
}

// AuthHandler passes authentication through; the storefront API issues and
// checks the tokens.
type AuthHandler struct {
	users   UserService
	timeout time.Duration
}

func NewAuthHandler(users UserService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		users:   users,
		timeout: timeout,
	}
}

type CheckUserRequestDTO struct {
	Email string `json:"email"`
}

// POST /api/v1/auth/check-user
func (h *AuthHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}
	res, err := h.users.CheckUser(ctx, req.Email)
	if err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respondAuth(w, http.StatusCreated)(h.users.Register(ctx, req))
}

// POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.OTPVerification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respondAuth(w, http.StatusOK)(h.users.VerifyOTP(ctx, req))
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respondAuth(w, http.StatusOK)(h.users.Login(ctx, req))
}

// GET /api/v1/auth/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if api.TokenFromContext(r.Context()) == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	user, err := h.users.Current(ctx)
	if err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// PUT /api/v1/auth/user
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if api.TokenFromContext(r.Context()) == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	user, err := h.users.Update(ctx, req)
	if err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) respondAuth(w http.ResponseWriter, status int) func(*domain.AuthResult, error) {
	return func(res *domain.AuthResult, err error) {
		if err != nil {
			handleError(w, err, "")
			return
		}
		respondJSON(w, status, res)
	}
}
