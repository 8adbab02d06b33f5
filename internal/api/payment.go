package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

func (c *Client) CreateGatewayOrder(ctx context.Context, req domain.GatewayOrderRequest) (*domain.GatewayOrder, error) {
	var order domain.GatewayOrder
	if err := c.do(ctx, http.MethodPost, "/payment/order", true, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req domain.PaymentVerification) error {
	return c.do(ctx, http.MethodPost, "/payment/verify", true, req, nil)
}
