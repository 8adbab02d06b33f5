package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

const DefaultCurrency = "INR"

var ErrIncompleteResult = errors.New("payment result is missing gateway fields")

// API is the part of the storefront API that talks to the payment gateway.
type API interface {
	CreateGatewayOrder(ctx context.Context, req domain.GatewayOrderRequest) (*domain.GatewayOrder, error)
	VerifyPayment(ctx context.Context, req domain.PaymentVerification) error
}

type Gateway struct {
	api      API
	currency string
	timeout  time.Duration
	now      func() time.Time
}

func NewGateway(api API, currency string, timeout time.Duration) *Gateway {
	if currency == "" {
		currency = DefaultCurrency
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{api: api, currency: currency, timeout: timeout, now: time.Now}
}

// Begin creates the gateway order the browser checkout is opened with.
func (g *Gateway) Begin(ctx context.Context, amount decimal.Decimal) (*domain.GatewayOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := domain.GatewayOrderRequest{
		Amount:   amount,
		Currency: g.currency,
		Receipt:  fmt.Sprintf("receipt_%d", g.now().UnixMilli()),
	}
	order, err := g.api.CreateGatewayOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	if order.Currency == "" {
		order.Currency = req.Currency
	}
	if order.Receipt == "" {
		order.Receipt = req.Receipt
	}
	return order, nil
}

// Verify checks the gateway signature for the order placed earlier.
func (g *Gateway) Verify(ctx context.Context, orderID string, result domain.PaymentResult) error {
	if strings.TrimSpace(result.GatewayOrderID) == "" ||
		strings.TrimSpace(result.PaymentID) == "" ||
		strings.TrimSpace(result.Signature) == "" {
		return ErrIncompleteResult
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.api.VerifyPayment(ctx, domain.PaymentVerification{
		PaymentResult: result,
		OrderID:       orderID,
	})
	if err != nil {
		return fmt.Errorf("verify payment for order %s: %w", orderID, err)
	}
	return nil
}

func (g *Gateway) Currency() string {
	return g.currency
}
