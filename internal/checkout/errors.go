package checkout

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyCart             = errors.New("no items selected for order")
	ErrIllegalTransition     = errors.New("illegal transition of checkout step")
	ErrShippingIncomplete    = errors.New("shipping details are incomplete")
	ErrReceiverPhoneRequired = errors.New("receiver phone number is required")
	ErrItemIndex             = errors.New("line item index out of range")
	ErrUnknownSize           = errors.New("size not offered for this product")
	ErrAddressIndex          = errors.New("saved address index out of range")
	ErrPaymentMethod         = errors.New("unsupported payment method")
	ErrShippingOption        = errors.New("unsupported shipping option")
	ErrSessionNotFound       = errors.New("checkout session not found")
	ErrSessionClosed         = errors.New("checkout session already submitted")
	ErrOrderPlaced           = errors.New("order already placed, checkout details are locked")
	ErrOrderPlacement        = errors.New("order placement failed")
	ErrPaymentHandoff        = errors.New("payment gateway order could not be created")
	ErrPaymentVerification   = errors.New("payment verification failed")
	ErrNoPendingPayment      = errors.New("no payment is awaiting confirmation")
)

// Messages shown to the shopper; they mirror what the storefront UI displays.
const (
	msgEmptyCart          = "No items selected for order."
	msgHydrationFailed    = "Failed to load product details. Please try again."
	msgPlacementFailed    = "Failed to place order. Please try again."
	msgGatewayFailed      = "Failed to create order"
	msgVerificationFailed = "Payment verification failed"
)

// HomePath is where a failed checkout sends the shopper.
const HomePath = "/"

// DefaultRedirectDelay is how long the failure message stays before the
// shopper is sent home.
const DefaultRedirectDelay = 2 * time.Second

// HydrationError ends the whole checkout flow: the item list could not be
// completed from the catalog.
type HydrationError struct {
	ProductID     string
	RedirectTo    string
	RedirectAfter time.Duration
	Err           error
}

func (e *HydrationError) Error() string {
	return fmt.Sprintf("hydrate product %s: %v", e.ProductID, e.Err)
}

func (e *HydrationError) Unwrap() error {
	return e.Err
}

// Message is the text shown while the redirect is pending.
func (e *HydrationError) Message() string {
	return msgHydrationFailed
}
