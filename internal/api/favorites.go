package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// Every favorites endpoint answers with the full, updated list.

func (c *Client) Favorites(ctx context.Context) ([]domain.Product, error) {
	return c.favoritesCall(ctx, http.MethodGet, "/favorites")
}

func (c *Client) AddFavorite(ctx context.Context, productID string) ([]domain.Product, error) {
	return c.favoritesCall(ctx, http.MethodPost, "/favorites/"+url.PathEscape(productID))
}

func (c *Client) RemoveFavorite(ctx context.Context, productID string) ([]domain.Product, error) {
	return c.favoritesCall(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(productID))
}

func (c *Client) favoritesCall(ctx context.Context, method, path string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, method, path, true, nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
