package square

import (
	"context"
	"strings"

	sq "github.com/square/square-go-sdk"
)

const catalogPageLimit = 100

// CatalogItem is the subset of a Square ITEM object the spa catalog needs.
type CatalogItem struct {
	ID          string
	Name        string
	Description string
	ProductType string
	Variations  []CatalogVariation
}

// CatalogVariation is a bookable ITEM_VARIATION.
type CatalogVariation struct {
	ID                  string
	Name                string
	PriceCents          int64
	Currency            string
	ServiceDurationMs   int64
	Version             int64
	AvailableForBooking bool
}

// ListCatalogServices pages through every appointment-service item in the catalog.
func (c *Client) ListCatalogServices(ctx context.Context) ([]CatalogItem, error) {
	var (
		items  []CatalogItem
		cursor *string
		pages  int
	)
	for {
		req := &sq.SearchCatalogObjectsRequest{
			ObjectTypes: []sq.CatalogObjectType{sq.CatalogObjectTypeItem},
			Cursor:      cursor,
			Limit:       intPtr(catalogPageLimit),
		}
		c.log(ctx, "request", "search_catalog", map[string]any{"page": pages})

		resp, err := c.sdk.Catalog.Search(ctx, req)
		if err != nil {
			c.log(ctx, "error", "search_catalog", map[string]any{"error": err.Error()})
			return nil, c.mapSquareError(err, "search catalog")
		}

		for _, obj := range resp.GetObjects() {
			if item, ok := catalogItemFromObject(obj); ok {
				items = append(items, item)
			}
		}
		pages++

		next := resp.GetCursor()
		if next == nil || strings.TrimSpace(*next) == "" {
			break
		}
		cursor = next
	}

	c.log(ctx, "response", "search_catalog", map[string]any{
		"items": len(items),
		"pages": pages,
	})
	return items, nil
}

func catalogItemFromObject(obj *sq.CatalogObject) (CatalogItem, bool) {
	if obj == nil || obj.Item == nil || obj.Item.ItemData == nil {
		return CatalogItem{}, false
	}
	if obj.Item.IsDeleted != nil && *obj.Item.IsDeleted {
		return CatalogItem{}, false
	}
	data := obj.Item.ItemData
	item := CatalogItem{
		ID:          obj.Item.ID,
		Name:        stringValue(data.Name),
		Description: stringValue(data.Description),
	}
	if data.ProductType != nil {
		item.ProductType = string(*data.ProductType)
	}
	for _, v := range data.Variations {
		if variation, ok := catalogVariationFromObject(v); ok {
			item.Variations = append(item.Variations, variation)
		}
	}
	return item, true
}

func catalogVariationFromObject(obj *sq.CatalogObject) (CatalogVariation, bool) {
	if obj == nil || obj.ItemVariation == nil || obj.ItemVariation.ItemVariationData == nil {
		return CatalogVariation{}, false
	}
	data := obj.ItemVariation.ItemVariationData
	variation := CatalogVariation{
		ID:   obj.ItemVariation.ID,
		Name: stringValue(data.Name),
	}
	if obj.ItemVariation.Version != nil {
		variation.Version = *obj.ItemVariation.Version
	}
	if data.PriceMoney != nil {
		if data.PriceMoney.Amount != nil {
			variation.PriceCents = *data.PriceMoney.Amount
		}
		if data.PriceMoney.Currency != nil {
			variation.Currency = string(*data.PriceMoney.Currency)
		}
	}
	if data.ServiceDuration != nil {
		variation.ServiceDurationMs = *data.ServiceDuration
	}
	if data.AvailableForBooking != nil {
		variation.AvailableForBooking = *data.AvailableForBooking
	}
	return variation, true
}

func intPtr(value int) *int {
	return &value
}
