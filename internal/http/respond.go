package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/storefront"
)

type ErrorResponse struct {
	Error    string    `json:"error"`
	Code     string    `json:"code,omitempty"`
	Details  string    `json:"details,omitempty"`
	Redirect *Redirect `json:"redirect,omitempty"`
}

// Redirect tells the UI to leave the page once the message has been shown.
type Redirect struct {
	To      string `json:"to"`
	AfterMs int64  `json:"after_ms"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts service errors to HTTP status codes. details is the
// message the session carries for the shopper, if any.
func handleError(w http.ResponseWriter, err error, details string) {
	var hydration *checkout.HydrationError
	if errors.As(err, &hydration) {
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   hydration.Message(),
			Code:    "hydration_failed",
			Details: hydration.ProductID,
			Redirect: &Redirect{
				To:      hydration.RedirectTo,
				AfterMs: hydration.RedirectAfter.Milliseconds(),
			},
		})
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, checkout.ErrSessionNotFound), errors.Is(err, storefront.ErrCartItemGone):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, checkout.ErrSessionClosed):
		httpStatus = http.StatusConflict
		code = "session_closed"
	case errors.Is(err, checkout.ErrOrderPlaced):
		httpStatus = http.StatusConflict
		code = "order_placed"
	case errors.Is(err, checkout.ErrIllegalTransition), errors.Is(err, checkout.ErrWrongStep):
		httpStatus = http.StatusConflict
		code = "illegal_transition"
	case errors.Is(err, checkout.ErrNoPendingPayment):
		httpStatus = http.StatusConflict
		code = "no_pending_payment"
	case errors.Is(err, storefront.ErrFavoritePending):
		httpStatus = http.StatusConflict
		code = "pending"
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrShippingIncomplete),
		errors.Is(err, checkout.ErrReceiverPhoneRequired),
		errors.Is(err, checkout.ErrItemIndex),
		errors.Is(err, checkout.ErrUnknownSize),
		errors.Is(err, checkout.ErrAddressIndex),
		errors.Is(err, checkout.ErrPaymentMethod),
		errors.Is(err, checkout.ErrShippingOption),
		errors.Is(err, storefront.ErrInvalidAmount),
		errors.Is(err, storefront.ErrInvalidContact),
		errors.Is(err, storefront.ErrInvalidColorAnalysis):
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case errors.Is(err, checkout.ErrPaymentVerification):
		httpStatus = http.StatusPaymentRequired
		code = "payment_verification_failed"
	case errors.Is(err, checkout.ErrOrderPlacement), errors.Is(err, checkout.ErrPaymentHandoff):
		httpStatus = http.StatusBadGateway
		code = "upstream_failed"
	case errors.Is(err, storefront.ErrNotSignedIn), api.Unauthorized(err):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case api.NotFound(err):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, api.ErrUnavailable):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	default:
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			httpStatus = http.StatusBadGateway
			code = "upstream_error"
			if apiErr.Status >= 400 && apiErr.Status < 500 {
				httpStatus = apiErr.Status
				code = "upstream_rejected"
			}
			respondJSON(w, httpStatus, ErrorResponse{Error: apiErr.Message, Code: code, Details: details})
			return
		}
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
	}

	message := err.Error()
	if httpStatus == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondJSON(w, httpStatus, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
