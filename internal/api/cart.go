package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) Cart(ctx context.Context) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddCartItem(ctx context.Context, req AddCartItemRequest) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart", req)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID, size string, quantity int) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPut, cartItemPath(productID, size), updateCartItemRequest{Quantity: quantity})
}

func (c *Client) RemoveCartItem(ctx context.Context, productID, size string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, cartItemPath(productID, size), nil)
}

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, method, path, true, body, &cart); err != nil {
		return nil, err
	}
	cart.Normalize()
	return &cart, nil
}

func cartItemPath(productID, size string) string {
	return "/cart/" + url.PathEscape(productID) + "/" + url.PathEscape(size)
}
