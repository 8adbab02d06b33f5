package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type SupportService interface {
	SendMessage(ctx context.Context, msg domain.ContactMessage) error
	ColorProfile(ctx context.Context, owner string) (*domain.ColorProfile, bool, error)
	AnalyzeColors(ctx context.Context, owner string, req domain.ColorAnalysisRequest) (*domain.ColorProfile, error)
}

type SupportHandler struct {
	support SupportService
	timeout time.Duration
}

func NewSupportHandler(support SupportService, timeout time.Duration) *SupportHandler {
	return &SupportHandler{
		support: support,
		timeout: timeout,
	}
}

type ColorProfileResponse struct {
	Exists  bool                 `json:"exists"`
	Profile *domain.ColorProfile `json:"profile,omitempty"`
}

// POST /api/v1/contact
func (h *SupportHandler) Contact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var msg domain.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.support.SendMessage(ctx, msg); err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// GET /api/v1/color-analysis
func (h *SupportHandler) ColorProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profile, found, err := h.support.ColorProfile(ctx, checkout.OwnerFromContext(r.Context()))
	if err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, &ColorProfileResponse{Exists: found, Profile: profile})
}

// POST /api/v1/color-analysis
func (h *SupportHandler) AnalyzeColors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.ColorAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	profile, err := h.support.AnalyzeColors(ctx, checkout.OwnerFromContext(r.Context()), req)
	if err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, &ColorProfileResponse{Exists: true, Profile: profile})
}
