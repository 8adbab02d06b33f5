package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type CheckoutService interface {
	Start(ctx context.Context, req checkout.StartRequest) (*checkout.View, error)
	Get(ctx context.Context, id string) (*checkout.View, error)
	ChangeQuantity(ctx context.Context, id string, index, delta int) (*checkout.View, error)
	ChangeSize(ctx context.Context, id string, index int, size string) (*checkout.View, error)
	Deselect(ctx context.Context, id string, index int) (*checkout.View, error)
	Navigate(ctx context.Context, id string, target checkout.Step) (*checkout.View, error)
	UpdateShipping(ctx context.Context, id string, shipping checkout.Shipping) (*checkout.View, error)
	SelectPayment(ctx context.Context, id string, method domain.PaymentMethod) (*checkout.View, error)
	Submit(ctx context.Context, id string) (*checkout.View, *checkout.Confirmation, error)
	CompletePayment(ctx context.Context, id string, result domain.PaymentResult) (*checkout.View, *checkout.Confirmation, error)
	CloseConfirmation(ctx context.Context, id string) (*checkout.View, error)
}

// CartReader supplies the items when a checkout starts from the cart page.
type CartReader interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	cart     CartReader
	timeout  time.Duration
}

func NewCheckoutHandler(svc CheckoutService, cart CartReader, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		cart:     cart,
		timeout:  timeout,
	}
}

type StartCheckoutRequestDTO struct {
	Items     []domain.LineItem `json:"items,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
	FromCart  bool              `json:"from_cart,omitempty"`
}

type QuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type SizeRequestDTO struct {
	Size string `json:"size"`
}

type StepRequestDTO struct {
	Step checkout.Step `json:"step"`
}

type PaymentMethodRequestDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

type SubmitResponseDTO struct {
	Session      *checkout.View         `json:"session"`
	Confirmation *checkout.Confirmation `json:"confirmation,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req StartCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	items := req.Items
	if req.FromCart {
		owner := checkout.OwnerFromContext(r.Context())
		if owner == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
			return
		}
		cart, err := h.cart.Get(ctx, owner)
		if err != nil {
			handleError(w, err, "")
			return
		}
		items = cart.LineItems()
		if len(items) == 0 {
			respondError(w, http.StatusBadRequest, "invalid_argument", checkout.ErrEmptyCart.Error())
			return
		}
	}

	view, err := h.checkout.Start(ctx, checkout.StartRequest{Items: items, ProductID: req.ProductID})
	if err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// GET /api/v1/checkout/{session_id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respond(w, http.StatusOK)(h.checkout.Get(ctx, chi.URLParam(r, "session_id")))
}

// POST /api/v1/checkout/{session_id}/items/{index}/quantity
func (h *CheckoutHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	var req QuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respond(w, http.StatusOK)(h.checkout.ChangeQuantity(ctx, chi.URLParam(r, "session_id"), index, req.Delta))
}

// PUT /api/v1/checkout/{session_id}/items/{index}/size
func (h *CheckoutHandler) ChangeSize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	var req SizeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respond(w, http.StatusOK)(h.checkout.ChangeSize(ctx, chi.URLParam(r, "session_id"), index, req.Size))
}

// DELETE /api/v1/checkout/{session_id}/items/{index}
func (h *CheckoutHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK)(h.checkout.Deselect(ctx, chi.URLParam(r, "session_id"), index))
}

// POST /api/v1/checkout/{session_id}/step
func (h *CheckoutHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req StepRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respond(w, http.StatusOK)(h.checkout.Navigate(ctx, chi.URLParam(r, "session_id"), req.Step))
}

// PUT /api/v1/checkout/{session_id}/shipping
func (h *CheckoutHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req checkout.Shipping
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respond(w, http.StatusOK)(h.checkout.UpdateShipping(ctx, chi.URLParam(r, "session_id"), req))
}

// PUT /api/v1/checkout/{session_id}/payment
func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PaymentMethodRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.respond(w, http.StatusOK)(h.checkout.SelectPayment(ctx, chi.URLParam(r, "session_id"), req.Method))
}

// POST /api/v1/checkout/{session_id}/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, conf, err := h.checkout.Submit(ctx, chi.URLParam(r, "session_id"))
	h.respondSubmission(w, view, conf, err)
}

// POST /api/v1/checkout/{session_id}/payment/callback
func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.PaymentResult
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	view, conf, err := h.checkout.CompletePayment(ctx, chi.URLParam(r, "session_id"), req)
	h.respondSubmission(w, view, conf, err)
}

// POST /api/v1/checkout/{session_id}/confirmation/close
func (h *CheckoutHandler) CloseConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respond(w, http.StatusOK)(h.checkout.CloseConfirmation(ctx, chi.URLParam(r, "session_id")))
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, status int) func(*checkout.View, error) {
	return func(view *checkout.View, err error) {
		if err != nil {
			handleError(w, err, sessionMessage(view))
			return
		}
		respondJSON(w, status, view)
	}
}

func (h *CheckoutHandler) respondSubmission(w http.ResponseWriter, view *checkout.View, conf *checkout.Confirmation, err error) {
	if err != nil {
		handleError(w, err, sessionMessage(view))
		return
	}
	respondJSON(w, http.StatusOK, SubmitResponseDTO{Session: view, Confirmation: conf})
}

func sessionMessage(view *checkout.View) string {
	if view == nil {
		return ""
	}
	return view.Error
}

func itemIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_index", "item index must be a number")
		return 0, false
	}
	return index, true
}
