package cart

import (
	"strings"

	"github.com/angelmondragon/spa-backend/internal/catalog"
)

// LineItem is one service variation held in a cart.
type LineItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	VariationName string `json:"variation_name,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	DurationMs    int64  `json:"duration_ms"`
	Version       int64  `json:"version"`
	Quantity      int    `json:"quantity"`
}

func (i LineItem) UnitPriceCents() int64 { return i.PriceCents }
func (i LineItem) UnitDurationMs() int64 { return i.DurationMs }
func (i LineItem) Qty() int              { return i.Quantity }

// ItemFromVariation snapshots a catalog selection as a line item with quantity 1.
func ItemFromVariation(svc catalog.Service, v catalog.Variation) LineItem {
	currency := strings.ToUpper(strings.TrimSpace(v.Currency))
	if currency == "" {
		currency = catalog.DefaultCurrency
	}
	return LineItem{
		ID:            v.ID,
		Name:          svc.Name,
		VariationName: v.Name,
		PriceCents:    v.PriceCents,
		Currency:      currency,
		DurationMs:    v.DurationMs,
		Version:       v.Version,
		Quantity:      1,
	}
}
