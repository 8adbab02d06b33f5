package domain

import "github.com/shopspring/decimal"

// GatewayOrderRequest is the POST /payment/order body.
type GatewayOrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

// GatewayOrder is what the UI needs to open the gateway checkout.
type GatewayOrder struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt,omitempty"`
}

// PaymentResult is reported by the gateway checkout once the user pays.
type PaymentResult struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

// PaymentVerification is the POST /payment/verify body.
type PaymentVerification struct {
	PaymentResult
	OrderID string `json:"orderId"`
}
