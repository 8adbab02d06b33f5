package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// TaxRate applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.12")

// PricingSnapshot is derived from the current line items on every read and
// never persisted.
type PricingSnapshot struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Total        decimal.Decimal `json:"total"`
}

// Calculate prices the items. Tax is rounded to whole currency units.
func Calculate(items []domain.LineItem, shippingCost decimal.Decimal) PricingSnapshot {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(TaxRate).Round(0)
	return PricingSnapshot{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shippingCost,
		Total:        subtotal.Add(tax).Add(shippingCost),
	}
}
