package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// The remote API stores prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is the catalog record returned by GET /products/:id.
// Items handed over from the cart page may carry only the id.
type Product struct {
	MongoID     string          `json:"_id,omitempty"`
	PlainID     string          `json:"id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Sizes       Sizes           `json:"sizes,omitempty"`
	Category    string          `json:"category,omitempty"`
}

func (p Product) ID() string {
	if p.MongoID != "" {
		return p.MongoID
	}
	return p.PlainID
}

// IsHydrated reports whether the record carries the descriptive fields the
// checkout needs; anything else must be looked up in the catalog.
func (p Product) IsHydrated() bool {
	return p.Name != "" && p.Sizes != nil
}

func (p Product) PrimaryImage() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// FirstSize returns the default size for a fresh selection, "" when the
// product has no sizes.
func (p Product) FirstSize() string {
	if len(p.Sizes) == 0 {
		return ""
	}
	return p.Sizes[0]
}

// Sizes accepts both ["S","M"] and [{"size":"S"}] on the wire.
type Sizes []string

func (s *Sizes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sizes: %w", err)
	}
	out := make(Sizes, 0, len(raw))
	for _, r := range raw {
		var plain string
		if err := json.Unmarshal(r, &plain); err == nil {
			out = append(out, plain)
			continue
		}
		var obj struct {
			Size string `json:"size"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return fmt.Errorf("sizes: unsupported entry %s", string(r))
		}
		out = append(out, obj.Size)
	}
	*s = out
	return nil
}

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
