package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

func (c *Client) SendContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	return c.do(ctx, http.MethodPost, "/contact", false, msg, nil)
}

// ColorProfile returns the signed-in shopper's color analysis. A shopper
// without one gets a 404 APIError.
func (c *Client) ColorProfile(ctx context.Context) (*domain.ColorProfile, error) {
	var profile domain.ColorProfile
	if err := c.do(ctx, http.MethodGet, "/color-analysis", true, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) AnalyzeColors(ctx context.Context, req domain.ColorAnalysisRequest) (*domain.ColorProfile, error) {
	var profile domain.ColorProfile
	if err := c.do(ctx, http.MethodPost, "/color-analysis", true, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
