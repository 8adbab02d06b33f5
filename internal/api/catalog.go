package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// Products lists the catalog, optionally filtered by category.
func (c *Client) Products(ctx context.Context, categoryID string) ([]domain.Product, error) {
	path := "/products"
	if categoryID != "" {
		path += "?categoryId=" + url.QueryEscape(categoryID)
	}
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, false, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), false, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) IncrementProductView(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/products/"+url.PathEscape(id)+"/view", false, nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", false, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) Category(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories/"+url.PathEscape(id), false, nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}
