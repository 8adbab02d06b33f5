package domain

import "github.com/shopspring/decimal"

// LineItem is one product+size+quantity selection in the checkout flow.
type LineItem struct {
	Product      Product `json:"product"`
	SelectedSize string  `json:"selectedSize"`
	Quantity     int     `json:"quantity"`
}

const (
	MinQuantity = 1
	MaxQuantity = 10
)

func (li LineItem) LineTotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// CartItem is an entry of the remote cart record.
type CartItem struct {
	Product  *Product        `json:"product"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Cart mirrors {products: [...]} returned by every /cart endpoint.
type Cart struct {
	Products []CartItem `json:"products"`
}

// Normalize drops entries whose product reference no longer resolves.
func (c *Cart) Normalize() {
	if c == nil {
		return
	}
	kept := make([]CartItem, 0, len(c.Products))
	for _, item := range c.Products {
		if item.Product == nil {
			continue
		}
		kept = append(kept, item)
	}
	c.Products = kept
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Products {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Products {
		count += item.Quantity
	}
	return count
}

// Find returns the entry for product and size, nil if absent.
func (c *Cart) Find(productID, size string) *CartItem {
	if c == nil {
		return nil
	}
	for i := range c.Products {
		p := c.Products[i].Product
		if p != nil && p.ID() == productID && c.Products[i].Size == size {
			return &c.Products[i]
		}
	}
	return nil
}

// LineItems converts cart entries into checkout selections.
func (c *Cart) LineItems() []LineItem {
	if c == nil {
		return nil
	}
	items := make([]LineItem, 0, len(c.Products))
	for _, entry := range c.Products {
		if entry.Product == nil {
			continue
		}
		items = append(items, LineItem{
			Product:      *entry.Product,
			SelectedSize: entry.Size,
			Quantity:     entry.Quantity,
		})
	}
	return items
}
